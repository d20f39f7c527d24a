package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Healthz handles GET /healthz requests.
func Healthz(c echo.Context) error {
	return Success(c, http.StatusOK, "ok", nil)
}
