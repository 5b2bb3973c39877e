package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notifix/notifix/internal/config"
	"github.com/notifix/notifix/internal/db"
	"github.com/notifix/notifix/internal/logging"
	"github.com/notifix/notifix/internal/server"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("error loading config: ", err)
	}

	l, err := logging.New(cfg.Production)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	if cfg.DefaultSecret {
		l.Warn("SESSION_SECRET is not set, using the built-in development secret; sessions can be forged")
	}

	d, err := db.Open(cfg, l)
	if err != nil {
		l.Fatal("error initializing database", zap.Error(err))
	}

	h, err := server.NewRouter(server.Options{
		DB:            d,
		Logger:        l,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.Production,
	})
	if err != nil {
		l.Fatal("error initializing router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		l.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("graceful shutdown failed", zap.Error(err))
	}
	l.Info("server stopped")
}
