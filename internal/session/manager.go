package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "notifix_session"

type contextKey string

const contextSessionKey contextKey = "session"

type claims struct {
	Session
	jwt.RegisteredClaims
}

// Manager signs sessions into an HS256 token stored in a cookie.
type Manager struct {
	secret []byte
	secure bool
}

func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure}
}

// Load returns the caller's session. A missing, expired or forged cookie
// yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	s, err := m.Decode(cookie.Value)
	if err != nil {
		return &Session{}
	}
	return s
}

// Save writes s back to the cookie, or removes the cookie when s carries
// nothing. It must be called before the response header is written.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if s.empty() {
		m.Destroy(w)
		return nil
	}

	token, err := m.Encode(s)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
	return nil
}

func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

func (m *Manager) Encode(s *Session) (string, error) {
	c := claims{
		Session: *s,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

func (m *Manager) Decode(token string) (*Session, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid session token")
	}

	s := c.Session
	return &s, nil
}

// Middleware loads the session into the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(r.Context(), m.Load(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextSessionKey, s)
}

// FromContext never returns nil; without a loaded session it returns an
// empty one.
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(contextSessionKey).(*Session)
	if !ok || s == nil {
		return &Session{}
	}
	return s
}
