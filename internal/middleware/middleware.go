package middleware

import (
	"context"
	"net/http"

	"github.com/notifix/notifix/internal/session"
	"go.uber.org/zap"
)

const (
	LoginPath   = "/login"
	DeniedPath  = "/notifications"
	adminRole   = "admin"
	deniedFlash = "You do not have permission to do that (admin required)."
)

// RoleFetcher returns the current role of a user, or "" when the user does
// not exist.
type RoleFetcher interface {
	RoleOf(ctx context.Context, id uint) (string, error)
}

// RequireLogin redirects to the login page when the session has no user or
// the user no longer exists. The session role is refreshed from the store so
// pages never show links for a role the user lost.
func RequireLogin(fetcher RoleFetcher, sessions *session.Manager, l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if !s.LoggedIn() {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			role, err := fetcher.RoleOf(r.Context(), s.UserID)
			if err != nil {
				l.Error("failed to fetch role", zap.Uint("user_id", s.UserID), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if role == "" {
				s.Clear()
				sessions.Destroy(w)
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			s.Role = role
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin re-reads the caller's role on every request, so a downgrade
// applies immediately. Non-admins get a warning flash and are sent to the
// notification list.
func RequireAdmin(fetcher RoleFetcher, sessions *session.Manager, l *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if !s.LoggedIn() {
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			role, err := fetcher.RoleOf(r.Context(), s.UserID)
			if err != nil {
				l.Error("failed to fetch role", zap.Uint("user_id", s.UserID), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			s.Role = role
			if role != adminRole {
				s.AddFlash(session.LevelWarning, deniedFlash)
				if err := sessions.Save(w, s); err != nil {
					l.Error("failed to save session", zap.Error(err))
				}
				http.Redirect(w, r, DeniedPath, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders sets the response headers every HTML page should carry.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
