package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/service"
)

// BackupHandler handles export, mail backup, and import of the whole collection.
type BackupHandler struct {
	contacts *service.ContactsService
	maxBytes int64
	now      func() time.Time
}

// NewBackupHandler wires a handler backed by the contacts service.
func NewBackupHandler(contacts *service.ContactsService, maxBytes int64) *BackupHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &BackupHandler{contacts: contacts, maxBytes: maxBytes, now: time.Now}
}

type mailtoResponse struct {
	URI string `json:"uri"`
}

// Export handles GET /export requests with a downloadable JSON file.
func (h *BackupHandler) Export(c echo.Context) error {
	data, err := h.contacts.Export()
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to export contacts")
	}
	filename := fmt.Sprintf("crm_backup_%s.json", h.now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// Mailto handles GET /export/mailto requests.
func (h *BackupHandler) Mailto(c echo.Context) error {
	uri, err := h.contacts.BackupMailto()
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to build backup email")
	}
	return Success(c, http.StatusOK, "", mailtoResponse{URI: uri})
}

// Import handles POST /import requests. The payload is either a multipart
// "file" field or the raw JSON body.
func (h *BackupHandler) Import(c echo.Context) error {
	data, err := h.readPayload(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	if int64(len(data)) > h.maxBytes {
		return Error(c, http.StatusRequestEntityTooLarge, "import file too large")
	}

	summary, err := h.contacts.Import(c.Request().Context(), data)
	if err != nil {
		return serviceError(c, err, http.StatusInternalServerError, "failed to import contacts")
	}
	return Success(c, http.StatusOK, "contacts imported", summary)
}

func (h *BackupHandler) readPayload(c echo.Context) ([]byte, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, errors.New("missing import file")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, errors.New("unable to open file")
		}
		defer file.Close()
		return readLimited(file, h.maxBytes)
	}
	return readLimited(c.Request().Body, h.maxBytes)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.New("unable to read payload")
	}
	return data, nil
}
