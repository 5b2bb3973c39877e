package users

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/notifix/notifix/internal/auth"
	"github.com/notifix/notifix/internal/session"
	"github.com/notifix/notifix/internal/web"
)

var roles = []string{auth.RoleUser, auth.RoleAdmin}

// FormData feeds user_form.html.
type FormData struct {
	ActionURL string
	User      auth.User
	Editing   bool
	Roles     []string
}

type Handler struct {
	store auth.Store
	web   *web.Renderer
}

func NewHandler(store auth.Store, rd *web.Renderer) *Handler {
	return &Handler{store: store, web: rd}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.web.ServerError(w, r, err)
		return
	}
	h.web.Render(w, r, http.StatusOK, "users.html", "Users", list)
}

// Detail is open to every logged-in user, not only admins.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	h.web.Render(w, r, http.StatusOK, "user_detail.html", u.Username, u)
}

func (h *Handler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, FormData{
		ActionURL: "/users/add",
		User:      auth.User{Role: auth.RoleUser},
	})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	u, password := fromForm(r)
	form := FormData{ActionURL: "/users/add", User: u}

	if msg := validate(u, password, true); msg != "" {
		h.invalid(w, r, form, msg)
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		h.web.ServerError(w, r, err)
		return
	}
	u.Password = hashed

	if err := h.store.Create(r.Context(), &u); err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			h.invalid(w, r, form, "Username already exists.")
			return
		}
		h.web.ServerError(w, r, err)
		return
	}
	h.web.RedirectWith(w, r, "/users", session.LevelSuccess, "User added.")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	u, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, FormData{
		ActionURL: fmt.Sprintf("/users/edit/%d", u.ID),
		User:      *u,
		Editing:   true,
	})
}

// Edit overwrites every field but the password, which is only replaced when
// a new one was typed.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	u, password := fromForm(r)
	u.ID = existing.ID
	form := FormData{ActionURL: fmt.Sprintf("/users/edit/%d", u.ID), User: u, Editing: true}

	if msg := validate(u, password, false); msg != "" {
		h.invalid(w, r, form, msg)
		return
	}

	withPassword := password != ""
	if withPassword {
		hashed, err := auth.HashPassword(password)
		if err != nil {
			h.web.ServerError(w, r, err)
			return
		}
		u.Password = hashed
	}

	if err := h.store.Update(r.Context(), &u, withPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			h.invalid(w, r, form, "Username already exists.")
		case errors.Is(err, auth.ErrNotFound):
			h.web.NotFound(w, r)
		default:
			h.web.ServerError(w, r, err)
		}
		return
	}

	// Keep the navigation bar in sync when admins edit themselves.
	if s := session.FromContext(r.Context()); s.UserID == u.ID {
		s.SignIn(u.ID, u.Username, u.Role)
	}
	h.web.RedirectWith(w, r, "/users", session.LevelSuccess, "User updated.")
}

// Delete refuses to remove the caller's own account before touching the
// store.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.web.NotFound(w, r)
		return
	}

	if session.FromContext(r.Context()).UserID == id {
		h.web.RedirectWith(w, r, "/users", session.LevelDanger, "You cannot delete your own account.")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			h.web.NotFound(w, r)
			return
		}
		h.web.ServerError(w, r, err)
		return
	}
	h.web.RedirectWith(w, r, "/users", session.LevelWarning, "User deleted.")
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	id, ok := parseID(r)
	if !ok {
		h.web.NotFound(w, r)
		return nil, false
	}

	u, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			h.web.NotFound(w, r)
		} else {
			h.web.ServerError(w, r, err)
		}
		return nil, false
	}
	return u, true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, form FormData) {
	form.Roles = roles
	title := "Add user"
	if form.Editing {
		title = "Edit user"
	}
	h.web.Render(w, r, http.StatusOK, "user_form.html", title, form)
}

// invalid re-renders the form with the submitted values and an error.
func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, form FormData, msg string) {
	session.FromContext(r.Context()).AddFlash(session.LevelDanger, msg)
	h.renderForm(w, r, form)
}

func fromForm(r *http.Request) (auth.User, string) {
	role := strings.TrimSpace(r.PostFormValue("role"))
	if role == "" {
		role = auth.RoleUser
	}

	return auth.User{
		Username:    auth.NormalizeUsername(r.PostFormValue("username")),
		Fullname:    strings.TrimSpace(r.PostFormValue("fullname")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Role:        role,
	}, r.PostFormValue("password")
}

func validate(u auth.User, password string, creating bool) string {
	switch {
	case u.Username == "":
		return "Username is required."
	case creating && password == "":
		return "Password is required."
	case !auth.ValidRole(u.Role):
		return "Role must be admin or user."
	}
	return ""
}

func parseID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
