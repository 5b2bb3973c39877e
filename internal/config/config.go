package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret is only meant for local development. The server logs a
// warning whenever it falls back to it.
const DefaultSessionSecret = "notifix_dev_secret_change_me"

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is empty")

// Config holds everything the server reads from the environment.
type Config struct {
	DatabaseURL   string
	Schema        string
	DBLogLevel    string
	SessionSecret string
	DefaultSecret bool
	Port          string
	Production    bool
}

// Load reads .env.local and .env (when present) and then the process
// environment.
//
// Environment variables:
//   - DATABASE_URL: Postgres connection string (required)
//   - SESSION_SECRET: cookie signing secret (falls back to FLASK_SECRET, then a dev default)
//   - PORT: listen port (default: 5050)
//   - APP_ENV: "production" enables production logging and secure cookies
//   - DB_SCHEMA: optional Postgres schema holding the users and notifications tables
//   - DB_LOG_LEVEL: silent, error, warn or info (default: warn)
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Schema:      strings.TrimSpace(os.Getenv("DB_SCHEMA")),
		DBLogLevel:  strings.ToLower(strings.TrimSpace(os.Getenv("DB_LOG_LEVEL"))),
		Port:        strings.TrimSpace(os.Getenv("PORT")),
		Production:  strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	if cfg.Port == "" {
		cfg.Port = "5050"
	}
	if cfg.DBLogLevel == "" {
		cfg.DBLogLevel = "warn"
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("FLASK_SECRET")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = DefaultSessionSecret
		cfg.DefaultSecret = true
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return "0.0.0.0:" + c.Port
}
