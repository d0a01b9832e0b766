package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/payewise/takehome-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"APP_ENV":        "",
		"PORT":           "",
		"BANDS_PROVIDER": "",
		"DATABASE_URL":   "",
		"REDIS_URL":      "",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("unexpected env %q", cfg.AppEnv)
	}
	if cfg.BandsProvider != config.ProviderEmbedded {
		t.Fatalf("expected embedded provider, got %q", cfg.BandsProvider)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr())
	}
	if cfg.BandsCacheTTL != time.Hour {
		t.Fatalf("unexpected cache ttl %v", cfg.BandsCacheTTL)
	}
	if cfg.RateLimitMax != 60 || cfg.RateLimitWindow != time.Minute {
		t.Fatalf("unexpected rate limit defaults %d/%v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if !cfg.SecurityHeaders {
		t.Fatal("expected security headers enabled by default")
	}
}

func TestLoadPostgresRequiresDatabaseURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"BANDS_PROVIDER": "postgres",
		"DATABASE_URL":   "",
	})
	if err == nil {
		t.Fatal("expected error when postgres provider has no database url")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"BANDS_PROVIDER": "filesystem",
	})
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	if !strings.Contains(err.Error(), "filesystem") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"BANDS_PROVIDER":           "postgres",
		"DATABASE_URL":             "postgres://localhost:5432/takehome",
		"REDIS_URL":                "redis://localhost:6379/0",
		"BANDS_CACHE_TTL":          "15m",
		"CORS_ALLOWED_ORIGINS":     "https://app.example.com, https://admin.example.com",
		"RATE_LIMIT_MAX":           "10",
		"RATE_LIMIT_WINDOW":        "30s",
		"REQUEST_BODY_LIMIT_BYTES": "4096",
		"SECURITY_HEADERS_ENABLED": "off",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BandsCacheTTL != 15*time.Minute {
		t.Fatalf("unexpected cache ttl %v", cfg.BandsCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("unexpected origins %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("unexpected rate limit %d/%v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.RequestBodyLimitBytes != 4096 {
		t.Fatalf("unexpected body limit %d", cfg.RequestBodyLimitBytes)
	}
	if cfg.SecurityHeaders {
		t.Fatal("expected security headers disabled")
	}
}
