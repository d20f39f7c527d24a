package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/extraction"
	"github.com/octobees/cardcrm/internal/imaging"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/service/outreach"
)

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, repository.ErrContactNotFound), errors.Is(err, service.ErrTemplateNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, outreach.ErrUnknownCandidate),
		errors.Is(err, service.ErrInvalidImport):
		return http.StatusBadRequest, true
	case errors.Is(err, service.ErrNoNumber):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, imaging.ErrUnsupportedImage), errors.Is(err, imaging.ErrHEICUnsupported):
		return http.StatusUnsupportedMediaType, true
	case errors.Is(err, extraction.ErrNotConfigured):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, extraction.ErrMalformedResponse):
		return http.StatusBadGateway, true
	}
	return 0, false
}

// serviceError writes the mapped status for err, or fallbackStatus with fallback as message.
func serviceError(c echo.Context, err error, fallbackStatus int, fallback string) error {
	status, ok := statusFor(err)
	if !ok {
		return Error(c, fallbackStatus, fallback)
	}
	switch status {
	case http.StatusNotFound:
		if errors.Is(err, service.ErrTemplateNotFound) {
			return Error(c, status, "template not found")
		}
		return Error(c, status, "contact not found")
	default:
		return Error(c, status, rootMessage(err))
	}
}

// rootMessage returns the innermost error text so wrapped context stays out of responses.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
