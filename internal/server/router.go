package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/notifix/notifix/internal/auth"
	"github.com/notifix/notifix/internal/db"
	"github.com/notifix/notifix/internal/logging"
	"github.com/notifix/notifix/internal/middleware"
	"github.com/notifix/notifix/internal/notifications"
	"github.com/notifix/notifix/internal/session"
	"github.com/notifix/notifix/internal/users"
	"github.com/notifix/notifix/internal/web"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	DB            *gorm.DB
	Logger        *zap.Logger
	SessionSecret string
	SecureCookies bool
}

// NewRouter wires stores, gates and handlers into the full route table.
func NewRouter(opts Options) (http.Handler, error) {
	l := opts.Logger
	sessions := session.NewManager(opts.SessionSecret, opts.SecureCookies)

	rd, err := web.NewRenderer(sessions, l)
	if err != nil {
		return nil, fmt.Errorf("init templates: %w", err)
	}

	userStore := auth.NewGormStore(opts.DB)
	notificationStore := notifications.NewGormStore(opts.DB)
	login := middleware.RequireLogin(userStore, sessions, l)
	admin := middleware.RequireAdmin(userStore, sessions, l)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.RequestLogger(l))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(sessions.Middleware)
	r.NotFound(rd.NotFound)

	r.Get("/healthz", healthHandler(opts.DB))
	r.With(login).Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/notifications", http.StatusFound)
	})

	auth.SetupRoutes(r, auth.NewHandler(userStore, sessions, rd, l))
	r.Mount("/notifications", notifications.SetupRoutes(notifications.NewHandler(notificationStore, rd), login, admin))
	r.Mount("/users", users.SetupRoutes(users.NewHandler(userStore, rd), login, admin))

	return r, nil
}

func healthHandler(d *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain")
		if err := db.Ping(ctx, d); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	}
}
