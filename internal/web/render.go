package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/notifix/notifix/internal/session"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const layout = "templates/layout.html"

// Page is what every template receives.
type Page struct {
	Title   string
	Session *session.Session
	Flashes []session.Flash
	Data    any
}

// Renderer executes page templates and carries the session's pending
// flashes onto the rendered page.
type Renderer struct {
	pages    map[string]*template.Template
	sessions *session.Manager
	l        *zap.Logger
}

func NewRenderer(sessions *session.Manager, l *zap.Logger) (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layout {
			continue
		}
		t, err := template.ParseFS(templateFS, layout, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", file, err)
		}
		pages[path.Base(file)] = t
	}

	return &Renderer{pages: pages, sessions: sessions, l: l}, nil
}

// Render writes page name with status. Pending flashes are consumed.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	t, ok := rd.pages[name]
	if !ok {
		rd.ServerError(w, r, fmt.Errorf("unknown template %s", name))
		return
	}

	s := session.FromContext(r.Context())
	page := Page{
		Title:   title,
		Session: s,
		Flashes: s.PopFlashes(),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		rd.ServerError(w, r, fmt.Errorf("execute template %s: %w", name, err))
		return
	}

	if err := rd.sessions.Save(w, s); err != nil {
		rd.ServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Redirect stores the session (and any flash added to it) and redirects.
func (rd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := rd.sessions.Save(w, session.FromContext(r.Context())); err != nil {
		rd.ServerError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// RedirectWith adds a flash and redirects.
func (rd *Renderer) RedirectWith(w http.ResponseWriter, r *http.Request, url string, level session.Level, message string) {
	session.FromContext(r.Context()).AddFlash(level, message)
	rd.Redirect(w, r, url)
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, http.StatusNotFound, "404.html", "Not found", nil)
}

func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rd.l.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
