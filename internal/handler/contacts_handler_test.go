package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/octobees/cardcrm/internal/entity"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/service/links"
	"github.com/octobees/cardcrm/internal/service/outreach"
	"github.com/octobees/cardcrm/internal/service/scoring"
	"github.com/octobees/cardcrm/internal/templates"
)

type stubAdvisor struct {
	plan string
	err  error
}

func (s stubAdvisor) Strategy(ctx context.Context, c entity.Contact) (string, error) {
	return s.plan, s.err
}

func TestContactsHandler_List(t *testing.T) {
	svc, _ := newContactsService(t, seedContacts())
	h := NewContactsHandler(svc)

	rec := serve(t, h.List, http.MethodGet, "/contacts?q=denim", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []entity.Contact
	decodeEnvelope(t, rec, &got)
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected search result: %+v", got)
	}

	rec = serve(t, h.List, http.MethodGet, "/contacts", nil, "")
	got = nil
	decodeEnvelope(t, rec, &got)
	if len(got) != 3 {
		t.Fatalf("expected all contacts, got %d", len(got))
	}
}

func TestContactsHandler_Board(t *testing.T) {
	svc, _ := newContactsService(t, seedContacts())
	h := NewContactsHandler(svc)

	rec := serve(t, h.Board, http.MethodGet, "/contacts/board", nil, "")
	var columns []service.BoardColumn
	decodeEnvelope(t, rec, &columns)
	if len(columns) != len(entity.Statuses) {
		t.Fatalf("expected %d columns, got %d", len(entity.Statuses), len(columns))
	}
	if columns[0].Status != entity.StatusNew || len(columns[0].Contacts) != 1 {
		t.Fatalf("unexpected first column: %+v", columns[0])
	}
}

func TestContactsHandler_CreateGetDelete(t *testing.T) {
	svc, _ := newContactsService(t, nil)
	h := NewContactsHandler(svc)

	rec := serve(t, h.Create, http.MethodPost, "/contacts",
		jsonBody(`{"companyName":"Giza Knits","phone":"01055555555","category":"export"}`), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var created entity.Contact
	decodeEnvelope(t, rec, &created)
	if created.ID != "id-1" || created.WhatsApp != "01055555555" || created.Category != entity.CategoryExport {
		t.Fatalf("unexpected created contact: %+v", created)
	}

	rec = serve(t, h.Get, http.MethodGet, "/contacts/id-1", nil, "", "id", "id-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, h.Delete, http.MethodDelete, "/contacts/id-1", nil, "", "id", "id-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = serve(t, h.Get, http.MethodGet, "/contacts/id-1", nil, "", "id", "id-1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestContactsHandler_CreateInvalidPayload(t *testing.T) {
	svc, _ := newContactsService(t, nil)
	h := NewContactsHandler(svc)

	rec := serve(t, h.Create, http.MethodPost, "/contacts", jsonBody(`{`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestContactsHandler_Update(t *testing.T) {
	svc, store := newContactsService(t, seedContacts())
	h := NewContactsHandler(svc)

	rec := serve(t, h.Update, http.MethodPatch, "/contacts/1",
		jsonBody(`{"status":"Meeting","notes":"call after Friday"}`), "application/json", "id", "1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	stored, err := store.Get("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != entity.StatusMeeting || stored.Notes != "call after Friday" || stored.CompanyName != "Nile Textiles" {
		t.Fatalf("unexpected stored contact: %+v", stored)
	}

	rec = serve(t, h.Update, http.MethodPatch, "/contacts/missing", jsonBody(`{"notes":"x"}`), "application/json", "id", "missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestContactsHandler_Links(t *testing.T) {
	svc, _ := newContactsService(t, seedContacts())
	h := NewContactsHandler(svc)

	rec := serve(t, h.Links, http.MethodGet, "/contacts/1/links", nil, "", "id", "1")
	var rows []links.Row
	decodeEnvelope(t, rec, &rows)
	if len(rows) != len(entity.ChannelFields) {
		t.Fatalf("expected %d rows, got %d", len(entity.ChannelFields), len(rows))
	}
	for _, row := range rows {
		if row.Type == entity.ChannelPhone && row.URI != "tel:01012345678" {
			t.Fatalf("unexpected phone link: %+v", row)
		}
	}
}

func TestContactsHandler_Score(t *testing.T) {
	svc, _ := newContactsService(t, seedContacts())
	h := NewContactsHandler(svc)

	rec := serve(t, h.Score, http.MethodGet, "/contacts/1/score", nil, "", "id", "1")
	var got scoring.Result
	decodeEnvelope(t, rec, &got)
	if rec.Code != http.StatusOK || got.Breakdown[scoring.CategoryReach] != 10 {
		t.Fatalf("unexpected score: %d %+v", rec.Code, got)
	}

	rec = serve(t, h.Score, http.MethodGet, "/contacts/x/score", nil, "", "id", "x")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestContactsHandler_Send(t *testing.T) {
	tests := map[string]struct {
		id      string
		body    string
		status  int
		outcome outreach.Outcome
	}{
		"dispatch single number": {id: "1", body: `{"text":"hello"}`, status: http.StatusOK, outcome: outreach.OutcomeDispatch},
		"choose between numbers": {id: "2", body: `{"template_id":"first-contact"}`, status: http.StatusOK, outcome: outreach.OutcomeChoose},
		"chosen number":          {id: "2", body: `{"text":"hi","number":"+201198765432"}`, status: http.StatusOK, outcome: outreach.OutcomeDispatch},
		"unknown chosen number":  {id: "2", body: `{"text":"hi","number":"01000000000"}`, status: http.StatusBadRequest},
		"no number":              {id: "3", body: `{"text":"hi"}`, status: http.StatusUnprocessableEntity, outcome: outreach.OutcomeNoNumber},
		"empty message":          {id: "1", body: `{}`, status: http.StatusBadRequest},
		"unknown template":       {id: "1", body: `{"template_id":"nope"}`, status: http.StatusNotFound},
		"unknown contact":        {id: "x", body: `{"text":"hi"}`, status: http.StatusNotFound},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, _ := newContactsService(t, seedContacts())
			h := NewContactsHandler(svc)

			rec := serve(t, h.Send, http.MethodPost, "/contacts/"+tt.id+"/send", jsonBody(tt.body), "application/json", "id", tt.id)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
			if tt.outcome == "" {
				return
			}
			var result service.SendResult
			decodeEnvelope(t, rec, &result)
			if result.Decision.Outcome != tt.outcome {
				t.Fatalf("expected outcome %s, got %s", tt.outcome, result.Decision.Outcome)
			}
		})
	}
}

func TestContactsHandler_SendRecordsContact(t *testing.T) {
	svc, store := newContactsService(t, seedContacts())
	h := NewContactsHandler(svc)

	rec := serve(t, h.Send, http.MethodPost, "/contacts/1/send", jsonBody(`{"text":"hello there"}`), "application/json", "id", "1")
	var result service.SendResult
	decodeEnvelope(t, rec, &result)
	if !strings.HasPrefix(result.Decision.URI, "https://wa.me/201012345678?text=hello%20there") {
		t.Fatalf("unexpected uri: %s", result.Decision.URI)
	}
	stored, _ := store.Get("1")
	if stored.Status != entity.StatusContacted || stored.LastContactDate == nil || !stored.LastContactDate.Equal(fixedNow) {
		t.Fatalf("expected contact to be marked contacted, got %+v", stored)
	}
}

func TestContactsHandler_SendSaveFailureReturnsLink(t *testing.T) {
	failSave := false
	store := repository.NewContactStore(nil, repository.ObserverFunc(func(ctx context.Context, contacts []entity.Contact) error {
		if failSave {
			return errors.New("disk full")
		}
		return nil
	}))
	if err := store.ReplaceAll(context.Background(), seedContacts()); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	failSave = true
	h := NewContactsHandler(service.NewContactsService(store, templates.Default()))

	rec := serve(t, h.Send, http.MethodPost, "/contacts/1/send", jsonBody(`{"text":"hello"}`), "application/json", "id", "1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d (%s)", rec.Code, rec.Body.String())
	}
	var result service.SendResult
	env := decodeEnvelope(t, rec, &result)
	if env.Message != "message ready but contact not saved" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	if result.Decision.Outcome != outreach.OutcomeDispatch || !strings.HasPrefix(result.Decision.URI, "https://wa.me/201012345678?text=hello") {
		t.Fatalf("expected the link in the error payload, got %+v", result.Decision)
	}
}

func TestContactsHandler_Strategy(t *testing.T) {
	tests := map[string]struct {
		opts   []service.ContactsOption
		status int
	}{
		"not configured": {status: http.StatusServiceUnavailable},
		"advisor fails":  {opts: []service.ContactsOption{service.WithAdvisor(stubAdvisor{err: errors.New("quota")})}, status: http.StatusBadGateway},
		"success":        {opts: []service.ContactsOption{service.WithAdvisor(stubAdvisor{plan: "Visit the factory"})}, status: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			svc, store := newContactsService(t, seedContacts(), tt.opts...)
			h := NewContactsHandler(svc)

			rec := serve(t, h.Strategy, http.MethodPost, "/contacts/1/strategy", nil, "", "id", "1")
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				stored, _ := store.Get("1")
				if stored.AIStrategy != "Visit the factory" {
					t.Fatalf("expected stored strategy, got %q", stored.AIStrategy)
				}
			}
		})
	}
}
