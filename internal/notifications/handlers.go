package notifications

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/notifix/notifix/internal/session"
	"github.com/notifix/notifix/internal/web"
)

type Handler struct {
	store Store
	web   *web.Renderer
}

func NewHandler(store Store, rd *web.Renderer) *Handler {
	return &Handler{store: store, web: rd}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.web.ServerError(w, r, err)
		return
	}
	h.web.Render(w, r, http.StatusOK, "notifications.html", "Notifications", list)
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r)
	if !ok {
		return
	}
	h.web.Render(w, r, http.StatusOK, "notification_detail.html", fmt.Sprintf("Notification #%d", n.ID), n)
}

func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.web.Render(w, r, http.StatusOK, "notification_form.html", "Add notification", FormData{
		ActionURL: "/notifications/add",
	})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	n := fromForm(r)
	if err := h.store.Create(r.Context(), &n); err != nil {
		h.web.ServerError(w, r, err)
		return
	}
	h.web.RedirectWith(w, r, "/notifications", session.LevelSuccess, "Notification added.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r)
	if !ok {
		return
	}
	h.web.Render(w, r, http.StatusOK, "notification_form.html", "Edit notification", FormData{
		ActionURL:    fmt.Sprintf("/notifications/edit/%d", n.ID),
		Notification: *n,
	})
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r)
	if !ok {
		return
	}

	edited := fromForm(r)
	edited.ID = n.ID
	if err := h.store.Update(r.Context(), &edited); err != nil {
		h.fail(w, r, err)
		return
	}
	h.web.RedirectWith(w, r, "/notifications", session.LevelSuccess, "Notification updated.")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.web.NotFound(w, r)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.web.RedirectWith(w, r, "/notifications", session.LevelWarning, "Notification deleted.")
}

// load fetches the notification named by the id URL parameter and answers
// 404 itself when there is none.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Notification, bool) {
	id, ok := parseID(r)
	if !ok {
		h.web.NotFound(w, r)
		return nil, false
	}

	n, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return n, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		h.web.NotFound(w, r)
		return
	}
	h.web.ServerError(w, r, err)
}

func fromForm(r *http.Request) Notification {
	return Notification{
		Content: strings.TrimSpace(r.PostFormValue("content")),
		Note:    strings.TrimSpace(r.PostFormValue("note")),
	}
}

func parseID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
