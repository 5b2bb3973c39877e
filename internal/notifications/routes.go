package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts under /notifications. Reading sits behind the login
// gate, writing behind the admin gate.
func SetupRoutes(h *Handler, login, admin func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(login)
		r.Get("/", h.List)
		r.Get("/{id:[0-9]+}", h.Detail)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/add", h.AddForm)
		r.Post("/add", h.Add)
		r.Get("/edit/{id:[0-9]+}", h.EditForm)
		r.Post("/edit/{id:[0-9]+}", h.Edit)
		r.Post("/delete/{id:[0-9]+}", h.Delete)
	})

	return r
}
