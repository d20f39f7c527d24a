package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	return respond(c, orStatus(status, http.StatusOK), statusSuccess, message, data)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	return respond(c, orStatus(status, http.StatusInternalServerError), statusError, message, nil)
}

// ErrorWithData sends an error response that still carries a payload, such as
// a routing decision the client needs to explain the failure.
func ErrorWithData(c echo.Context, status int, message string, data any) error {
	return respond(c, orStatus(status, http.StatusInternalServerError), statusError, message, data)
}

func respond(c echo.Context, status int, state, message string, data any) error {
	return c.JSON(status, APIResponse{Status: state, Message: message, Data: data})
}

func orStatus(status, fallback int) int {
	if status == 0 {
		return fallback
	}
	return status
}
