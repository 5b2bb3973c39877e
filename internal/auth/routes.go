package auth

import (
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *Handler) {
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
}
