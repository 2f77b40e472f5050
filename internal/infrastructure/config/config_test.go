package config_test

import (
	"testing"
	"time"

	"github.com/quickdrop/ledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.FoodCommissionPercent != 15 || cfg.MartCommissionPercent != 10 || cfg.CourierPlatformPercent != 20 {
		t.Fatalf("unexpected default commission rates: %d/%d/%d",
			cfg.FoodCommissionPercent, cfg.MartCommissionPercent, cfg.CourierPlatformPercent)
	}

	if cfg.MinimumPayout != 50000 {
		t.Fatalf("expected default minimum payout 50000, got %d", cfg.MinimumPayout)
	}

	if cfg.Currency != "XAF" {
		t.Fatalf("expected default currency XAF, got %s", cfg.Currency)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("FOOD_COMMISSION_PERCENT", "18")
	t.Setenv("MINIMUM_PAYOUT", "25000")
	t.Setenv("OUTBOX_POLL_INTERVAL", "1s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.FoodCommissionPercent != 18 {
		t.Fatalf("expected commission override, got %d", cfg.FoodCommissionPercent)
	}

	if cfg.MinimumPayout != 25000 {
		t.Fatalf("expected minimum payout override, got %d", cfg.MinimumPayout)
	}

	if cfg.OutboxPollInterval != time.Second {
		t.Fatalf("expected outbox poll interval override, got %s", cfg.OutboxPollInterval)
	}

	if !cfg.AuthEnabled {
		t.Fatalf("expected auth to be enabled")
	}
}

func TestLoadRejectsUnknownCurrency(t *testing.T) {
	t.Setenv("CURRENCY", "DOGE")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected an error for an unsupported currency")
	}
}
