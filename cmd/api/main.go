package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/cardcrm/internal/auth"
	"github.com/octobees/cardcrm/internal/config"
	"github.com/octobees/cardcrm/internal/extraction"
	"github.com/octobees/cardcrm/internal/handler"
	"github.com/octobees/cardcrm/internal/logging"
	middlewarepkg "github.com/octobees/cardcrm/internal/middleware"
	"github.com/octobees/cardcrm/internal/repository"
	"github.com/octobees/cardcrm/internal/router"
	"github.com/octobees/cardcrm/internal/service"
	"github.com/octobees/cardcrm/internal/service/outreach"
	"github.com/octobees/cardcrm/internal/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, closeKV, err := repository.OpenKV(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer closeKV()

	store := repository.NewContactStore(logger)
	if err := store.Load(ctx, kv, cfg.StorageKey); err != nil {
		logger.Fatal("failed to load contacts", zap.Error(err))
	}
	store.Observe(repository.NewPersistObserver(kv, cfg.StorageKey, logger))

	set, err := templates.Load(cfg.TemplatesFile)
	if err != nil {
		logger.Fatal("failed to load templates", zap.String("path", cfg.TemplatesFile), zap.Error(err))
	}

	opts := []service.ContactsOption{
		service.WithLogger(logger),
		service.WithSession(outreach.Session{SenderName: cfg.SenderName, Event: cfg.EventName}),
	}
	opts = append(opts, extractionOptions(ctx, cfg, logger)...)
	contactsService := service.NewContactsService(store, set, opts...)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(cfg.OperatorEmail, cfg.OperatorPasswordHash, jwtManager)
	if cfg.OperatorEmail == "" || cfg.OperatorPasswordHash == "" {
		logger.Warn("operator account is not configured; logins will fail")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Contacts: handler.NewContactsHandler(contactsService),
		Scan:     handler.NewScanHandler(contactsService, cfg.MaxUploadBytes),
		Links:    handler.NewLinksHandler(contactsService),
		Backup:   handler.NewBackupHandler(contactsService, cfg.MaxUploadBytes),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.Int("contacts", len(store.All())))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// extractionOptions wires the card extractor and the strategy advisor. A
// missing backend is logged, not fatal: scans then answer 503.
func extractionOptions(ctx context.Context, cfg *config.Config, logger *zap.Logger) []service.ContactsOption {
	var opts []service.ContactsOption

	gemini, err := extraction.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn("gemini client unavailable", zap.Error(err))
	} else {
		opts = append(opts, service.WithAdvisor(extraction.NewGeminiAdvisor(gemini, cfg.GeminiModel)))
	}

	switch cfg.Extractor {
	case config.ExtractorWorker:
		client, err := extraction.NewWorkerClient(&http.Client{Timeout: 30 * time.Second}, cfg.WorkerBaseURL)
		if err != nil {
			logger.Warn("worker extractor unavailable", zap.Error(err))
			break
		}
		opts = append(opts, service.WithExtractor(extraction.NewWorkerExtractor(client)))
	default:
		if gemini != nil {
			opts = append(opts, service.WithExtractor(extraction.NewGeminiExtractor(gemini, cfg.GeminiModel, logger)))
		}
	}
	return opts
}

// bodyLimit renders the upload ceiling in the format echo's BodyLimit expects,
// leaving headroom for multipart framing.
func bodyLimit(maxBytes int64) string {
	return strconv.FormatInt(maxBytes+64<<10, 10)
}
