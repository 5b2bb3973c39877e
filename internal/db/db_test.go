package db

import (
	"context"
	"testing"
	"time"

	"github.com/notifix/notifix/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNaming(t *testing.T) {
	if got := Naming("").TableName("Notification"); got != "notifications" {
		t.Errorf("expected notifications, got %q", got)
	}
	if got := Naming("app").TableName("Notification"); got != "app.notifications" {
		t.Errorf("expected app.notifications, got %q", got)
	}
}

// TestOpen_UnreachableDatabase checks that a dead database at startup is
// logged and the handle is still returned.
func TestOpen_UnreachableDatabase(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := config.Config{
		DatabaseURL: "postgres://u:p@127.0.0.1:1/x?sslmode=disable&connect_timeout=2",
		DBLogLevel:  "silent",
	}

	d, err := Open(cfg, zap.New(core))
	if err != nil {
		t.Fatalf("expected Open to succeed without a database, got %v", err)
	}
	if d == nil {
		t.Fatal("expected a handle")
	}
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if n := logs.FilterMessage("database connection failed, continuing without it").Len(); n != 1 {
		t.Errorf("expected 1 warning, got %d", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := Ping(ctx, d); err == nil {
		t.Error("expected Ping to fail")
	}
}
