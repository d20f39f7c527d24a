package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/auth"
	"github.com/octobees/cardcrm/internal/config"
	"github.com/octobees/cardcrm/internal/handler"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/templates"
)

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	contacts := service.NewContactsService(repository.NewContactStore(nil), templates.Default())
	cfg := &config.Config{RateLimitScan: config.RateLimitConfig{Requests: 1, Interval: time.Hour}}

	e := echo.New()
	Register(e, cfg, jwtManager, Handlers{
		Auth:     handler.NewAuthHandler(service.NewAuthService("", "", jwtManager)),
		Contacts: handler.NewContactsHandler(contacts),
		Scan:     handler.NewScanHandler(contacts, 1024),
		Links:    handler.NewLinksHandler(contacts),
		Backup:   handler.NewBackupHandler(contacts, 1024),
	})
	return e, jwtManager
}

func TestRegister_Access(t *testing.T) {
	e, jwtManager := newTestServer(t)
	operatorToken, err := jwtManager.GenerateToken("op@example.com", "op@example.com", service.OperatorRole)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	guestToken, err := jwtManager.GenerateToken("guest@example.com", "guest@example.com", "guest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		method string
		path   string
		token  string
		status int
	}{
		"health is public":        {method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		"contacts need a token":   {method: http.MethodGet, path: "/contacts", status: http.StatusUnauthorized},
		"contacts need operator":  {method: http.MethodGet, path: "/contacts", token: guestToken, status: http.StatusForbidden},
		"contacts with operator":  {method: http.MethodGet, path: "/contacts", token: operatorToken, status: http.StatusOK},
		"board with operator":     {method: http.MethodGet, path: "/contacts/board", token: operatorToken, status: http.StatusOK},
		"unknown contact":         {method: http.MethodGet, path: "/contacts/missing", token: operatorToken, status: http.StatusNotFound},
		"templates with operator": {method: http.MethodGet, path: "/templates", token: operatorToken, status: http.StatusOK},
		"export needs a token":    {method: http.MethodGet, path: "/export", status: http.StatusUnauthorized},
		"login without operator":  {method: http.MethodPost, path: "/auth/login", status: http.StatusBadRequest},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegister_ScanRateLimited(t *testing.T) {
	e, jwtManager := newTestServer(t)
	token, err := jwtManager.GenerateToken("op@example.com", "op@example.com", service.OperatorRole)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/contacts/scan", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [400 429], got %v", codes)
	}
}
