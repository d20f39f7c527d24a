package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/templates"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newContactsService(t *testing.T, seed []entity.Contact, opts ...service.ContactsOption) (*service.ContactsService, *repository.ContactStore) {
	t.Helper()
	store := repository.NewContactStore(nil)
	if err := store.ReplaceAll(context.Background(), seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	seq := 0
	base := []service.ContactsOption{
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}
	return service.NewContactsService(store, templates.Default(), append(base, opts...)...), store
}

// serve runs h against a request built from method, target and body. params are name/value pairs.
func serve(t *testing.T, h echo.HandlerFunc, method, target string, body io.Reader, contentType string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := h(c); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	return rec
}

func jsonBody(v string) io.Reader {
	return strings.NewReader(v)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v (%s)", err, rec.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return env
}

func seedContacts() []entity.Contact {
	return []entity.Contact{
		{
			ID:          "1",
			CompanyName: "Nile Textiles",
			PersonName:  "Mona",
			Phone:       "01012345678",
			Category:    entity.CategoryFactory,
			Status:      entity.StatusNew,
			CreatedAt:   fixedNow.Add(-time.Hour),
		},
		{
			ID:          "2",
			CompanyName: "Delta Denim",
			PersonName:  "Omar",
			WhatsApp:    "01012345678 / 01198765432",
			Category:    entity.CategoryBrand,
			Status:      entity.StatusInterested,
			CreatedAt:   fixedNow.Add(-2 * time.Hour),
		},
		{
			ID:          "3",
			CompanyName: "Cairo Cuts",
			PersonName:  "Hany",
			Category:    entity.CategoryWorkshop,
			Status:      entity.StatusCold,
			CreatedAt:   fixedNow.Add(-3 * time.Hour),
		},
	}
}
