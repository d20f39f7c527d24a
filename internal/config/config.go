package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers understood by Load.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Extractor backends understood by Load.
const (
	ExtractorGemini = "gemini"
	ExtractorWorker = "worker"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port     string
	LogLevel string

	StorageDriver string
	DatabaseURL   string
	SQLitePath    string
	StorageKey    string

	JWTSecret            string
	TokenTTL             time.Duration
	OperatorEmail        string
	OperatorPasswordHash string

	Extractor     string
	GeminiAPIKey  string
	GeminiModel   string
	WorkerBaseURL string

	RateLimitScan  RateLimitConfig
	MaxUploadBytes int64

	TemplatesFile string
	SenderName    string
	EventName     string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		StorageDriver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           getEnv("SQLITE_PATH", "cardcrm.db"),
		StorageKey:           getEnv("STORAGE_KEY", "contacts_v3"),
		JWTSecret:            getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:             parseDuration(getEnv("JWT_TTL", "24h")),
		OperatorEmail:        strings.ToLower(strings.TrimSpace(os.Getenv("OPERATOR_EMAIL"))),
		OperatorPasswordHash: os.Getenv("OPERATOR_PASSWORD_HASH"),
		Extractor:            strings.ToLower(getEnv("EXTRACTOR", ExtractorGemini)),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		WorkerBaseURL:        getEnv("WORKER_BASE_URL", "http://worker:9000"),
		TemplatesFile:        os.Getenv("TEMPLATES_FILE"),
		SenderName:           os.Getenv("SENDER_NAME"),
		EventName:            os.Getenv("EVENT_NAME"),
	}

	switch cfg.StorageDriver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER value: %q", cfg.StorageDriver)
	}

	switch cfg.Extractor {
	case ExtractorGemini, ExtractorWorker:
	default:
		return nil, fmt.Errorf("invalid EXTRACTOR value: %q", cfg.Extractor)
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCAN", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCAN value: %w", err)
	}
	cfg.RateLimitScan = rl

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES value: %q", os.Getenv("MAX_UPLOAD_BYTES"))
	}
	cfg.MaxUploadBytes = maxUpload

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
