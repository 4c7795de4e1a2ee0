package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Enrichment scheduling modes. Sync blocks the request until images resolve,
// deferred hands the work to in-process background workers, worker enqueues
// a durable job for the cmd/worker binary.
const (
	EnrichModeSync     = "sync"
	EnrichModeDeferred = "deferred"
	EnrichModeWorker   = "worker"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	DatabaseURL         string
	AppURL              string
	DeepSeekAPIKey      string
	DeepSeekModel       string
	DeepSeekBaseURL     string
	UnsplashAccessKey   string
	UnsplashBaseURL     string
	PlaceholderImageURL string
	GeoIPDBPath         string
	DefaultLanguage     string
	EnrichMode          string
	CORSAllowedOrigins  []string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		AppURL:              os.Getenv("APP_URL"),
		DeepSeekAPIKey:      os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:       getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepSeekBaseURL:     getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		UnsplashAccessKey:   os.Getenv("UNSPLASH_ACCESS_KEY"),
		UnsplashBaseURL:     getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		PlaceholderImageURL: os.Getenv("PLACEHOLDER_IMAGE_URL"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		DefaultLanguage:     getEnv("DEFAULT_LANGUAGE", "en"),
		EnrichMode:          getEnv("ENRICH_MODE", EnrichModeDeferred),
		CORSAllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.DeepSeekAPIKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
	}

	switch cfg.EnrichMode {
	case EnrichModeSync, EnrichModeDeferred, EnrichModeWorker:
	default:
		return nil, fmt.Errorf("ENRICH_MODE must be one of sync, deferred, worker (got %q)", cfg.EnrichMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
