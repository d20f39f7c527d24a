package router

import (
	"github.com/labstack/echo/v4"

	"github.com/octobees/cardcrm/internal/auth"
	"github.com/octobees/cardcrm/internal/config"
	"github.com/octobees/cardcrm/internal/handler"
	middlewarepkg "github.com/octobees/cardcrm/internal/middleware"
	"github.com/octobees/cardcrm/internal/service"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Contacts *handler.ContactsHandler
	Scan     *handler.ScanHandler
	Links    *handler.LinksHandler
	Backup   *handler.BackupHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", handler.Healthz)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))
	secured.Use(middlewarepkg.RequireRole(service.OperatorRole))

	secured.GET("/contacts", handlers.Contacts.List)
	secured.POST("/contacts", handlers.Contacts.Create)
	secured.GET("/contacts/board", handlers.Contacts.Board)
	secured.POST("/contacts/scan", handlers.Scan.Scan, middlewarepkg.ScanRateLimiter(cfg.RateLimitScan))
	secured.GET("/contacts/:id", handlers.Contacts.Get)
	secured.PATCH("/contacts/:id", handlers.Contacts.Update)
	secured.DELETE("/contacts/:id", handlers.Contacts.Delete)
	secured.GET("/contacts/:id/links", handlers.Contacts.Links)
	secured.GET("/contacts/:id/score", handlers.Contacts.Score)
	secured.POST("/contacts/:id/send", handlers.Contacts.Send)
	secured.POST("/contacts/:id/strategy", handlers.Contacts.Strategy)

	secured.GET("/links/resolve", handlers.Links.Resolve)
	secured.GET("/phones/normalize", handlers.Links.Normalize)
	secured.GET("/templates", handlers.Links.Templates)

	secured.GET("/export", handlers.Backup.Export)
	secured.GET("/export/mailto", handlers.Backup.Mailto)
	secured.POST("/import", handlers.Backup.Import)
}
