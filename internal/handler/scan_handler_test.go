package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/extraction"
	"github.com/octobees/cardcrm/internal/service"
)

type stubExtractor struct {
	card  entity.ExtractedCard
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, image []byte, mimeType string) (entity.ExtractedCard, error) {
	s.calls++
	return s.card, s.err
}

func jpegBytes() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestScanHandler_Success(t *testing.T) {
	extractor := &stubExtractor{card: entity.ExtractedCard{CompanyName: "Nile Textiles", Phone: "01012345678", Email: "sales@@nile"}}
	svc, store := newContactsService(t, nil, service.WithExtractor(extractor))
	h := NewScanHandler(svc, 1024)

	body, contentType := multipartBody(t, "image", "card.jpg", jpegBytes())
	rec := serve(t, h.Scan, http.MethodPost, "/contacts/scan", body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var result service.ScanResult
	decodeEnvelope(t, rec, &result)
	if result.Contact.CompanyName != "Nile Textiles" || result.Contact.PersonName != service.DefaultPersonName {
		t.Fatalf("unexpected contact: %+v", result.Contact)
	}
	fields := map[string]bool{}
	for _, issue := range result.Issues {
		fields[issue.Field] = true
	}
	if !fields["email"] || !fields["personName"] {
		t.Fatalf("expected email and personName issues, got %+v", result.Issues)
	}
	if len(store.All()) != 1 {
		t.Fatalf("expected stored contact")
	}
}

func TestScanHandler_Errors(t *testing.T) {
	tests := map[string]struct {
		opts     []service.ContactsOption
		field    string
		data     []byte
		maxBytes int64
		status   int
	}{
		"missing file":       {opts: []service.ContactsOption{service.WithExtractor(&stubExtractor{})}, field: "photo", data: jpegBytes(), status: http.StatusBadRequest},
		"too large":          {opts: []service.ContactsOption{service.WithExtractor(&stubExtractor{})}, field: "image", data: bytes.Repeat([]byte{0xFF}, 64), maxBytes: 16, status: http.StatusRequestEntityTooLarge},
		"not configured":     {field: "image", data: jpegBytes(), status: http.StatusServiceUnavailable},
		"unsupported format": {opts: []service.ContactsOption{service.WithExtractor(&stubExtractor{})}, field: "image", data: []byte("plain text, not an image"), status: http.StatusUnsupportedMediaType},
		"malformed response": {opts: []service.ContactsOption{service.WithExtractor(&stubExtractor{err: extraction.ErrMalformedResponse})}, field: "image", data: jpegBytes(), status: http.StatusBadGateway},
		"upstream failure":   {opts: []service.ContactsOption{service.WithExtractor(&stubExtractor{err: errors.New("timeout")})}, field: "image", data: jpegBytes(), status: http.StatusBadGateway},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, store := newContactsService(t, nil, tt.opts...)
			maxBytes := tt.maxBytes
			if maxBytes == 0 {
				maxBytes = 1024
			}
			h := NewScanHandler(svc, maxBytes)

			body, contentType := multipartBody(t, tt.field, "card.jpg", tt.data)
			rec := serve(t, h.Scan, http.MethodPost, "/contacts/scan", body, contentType)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
			if len(store.All()) != 0 {
				t.Fatalf("expected nothing stored on failure")
			}
		})
	}
}
