package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/extraction"
	"github.com/octobees/cardcrm/internal/middleware"
	"github.com/octobees/cardcrm/internal/service"
)

// ScanHandler ingests business card photos.
type ScanHandler struct {
	contacts *service.ContactsService
	maxBytes int64
}

// NewScanHandler wires a handler backed by the contacts service.
func NewScanHandler(contacts *service.ContactsService, maxBytes int64) *ScanHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &ScanHandler{contacts: contacts, maxBytes: maxBytes}
}

// Scan handles POST /contacts/scan requests with a multipart "image" field.
func (h *ScanHandler) Scan(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing image file")
	}
	if fileHeader.Size > h.maxBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "image too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to read file")
	}
	if int64(len(data)) > h.maxBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "image too large")
	}

	ctx := extraction.WithRequestID(c.Request().Context(), middleware.RequestIDFromContext(c))
	result, err := h.contacts.Scan(ctx, data, fileHeader.Header.Get(echo.HeaderContentType))
	if err != nil {
		return serviceError(c, err, http.StatusBadGateway, "card extraction failed")
	}
	return Success(c, http.StatusCreated, "card scanned", result)
}
