package config_test

import (
	"errors"
	"testing"

	"github.com/notifix/notifix/internal/config"
)

func TestFromEnv_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := config.FromEnv()
	if !errors.Is(err, config.ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/notifix")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("FLASK_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_LOG_LEVEL", "")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "5050" {
		t.Errorf("expected default port 5050, got %q", cfg.Port)
	}
	if cfg.SessionSecret != config.DefaultSessionSecret || !cfg.DefaultSecret {
		t.Errorf("expected default secret to be flagged, got %+v", cfg)
	}
	if cfg.DBLogLevel != "warn" {
		t.Errorf("expected warn log level, got %q", cfg.DBLogLevel)
	}
	if cfg.Production {
		t.Error("expected development mode")
	}
	if cfg.Addr() != "0.0.0.0:5050" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestFromEnv_SecretFallbackOrder(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/notifix")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("FLASK_SECRET", "legacy-secret")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionSecret != "legacy-secret" || cfg.DefaultSecret {
		t.Errorf("expected FLASK_SECRET to be used, got %+v", cfg)
	}

	t.Setenv("SESSION_SECRET", "primary")
	cfg, _ = config.FromEnv()
	if cfg.SessionSecret != "primary" {
		t.Errorf("expected SESSION_SECRET to win, got %q", cfg.SessionSecret)
	}
}

func TestFromEnv_Production(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/notifix")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "8080")

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Production {
		t.Error("expected production mode")
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}
