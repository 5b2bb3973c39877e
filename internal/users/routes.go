package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts under /users. Only the detail page is open to
// non-admins.
func SetupRoutes(h *Handler, login, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.With(login).Get("/{id:[0-9]+}", h.Detail)

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.List)
		r.Get("/add", h.AddForm)
		r.Post("/add", h.Add)
		r.Get("/edit/{id:[0-9]+}", h.EditForm)
		r.Post("/edit/{id:[0-9]+}", h.Edit)
		r.Post("/delete/{id:[0-9]+}", h.Delete)
	})

	return r
}
