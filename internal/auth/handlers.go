package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/notifix/notifix/internal/session"
	"github.com/notifix/notifix/internal/web"
	"go.uber.org/zap"
)

const invalidCredentials = "Invalid username or password."

type Handler struct {
	store    Store
	sessions *session.Manager
	web      *web.Renderer
	l        *zap.Logger
}

func NewHandler(store Store, sessions *session.Manager, rd *web.Renderer, l *zap.Logger) *Handler {
	return &Handler{store: store, sessions: sessions, web: rd, l: l}
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.web.Render(w, r, http.StatusOK, "login.html", "Log in", "")
}

// Login answers a missing user and a wrong password with the same message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	s := session.FromContext(r.Context())

	user, err := h.store.FindForLogin(r.Context(), username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		h.web.ServerError(w, r, err)
		return
	}

	if user == nil {
		CheckUnknown(password)
		s.AddFlash(session.LevelDanger, invalidCredentials)
		h.web.Render(w, r, http.StatusOK, "login.html", "Log in", username)
		return
	}

	ok, legacy := CheckPassword(user.Password, password)
	if !ok {
		s.AddFlash(session.LevelDanger, invalidCredentials)
		h.web.Render(w, r, http.StatusOK, "login.html", "Log in", username)
		return
	}

	if legacy {
		h.upgradePassword(r, user.ID, password)
	}

	s.SignIn(user.ID, user.Username, user.Role)
	s.AddFlash(session.LevelSuccess, "Logged in.")
	h.web.Redirect(w, r, "/notifications")
}

// upgradePassword replaces a plaintext password with its hash. Failure only
// costs another attempt on the next login.
func (h *Handler) upgradePassword(r *http.Request, id uint, password string) {
	hashed, err := HashPassword(password)
	if err == nil {
		err = h.store.SetPassword(r.Context(), id, hashed)
	}
	if err != nil {
		h.l.Warn("failed to upgrade plaintext password", zap.Uint("user_id", id), zap.Error(err))
		return
	}
	h.l.Info("upgraded plaintext password", zap.Uint("user_id", id))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	s.Clear()
	s.AddFlash(session.LevelInfo, "Logged out.")
	h.web.Redirect(w, r, "/login")
}
