package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/notifix/notifix/internal/auth"
	"github.com/notifix/notifix/internal/notifications"
	"github.com/notifix/notifix/internal/server"
	"github.com/notifix/notifix/internal/testutil"
	"gorm.io/gorm"
)

type env struct {
	db  *gorm.DB
	srv *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()

	d := testutil.OpenInMemoryDB(t, &auth.User{}, &notifications.Notification{})
	h, err := server.NewRouter(server.Options{
		DB:            d,
		Logger:        testutil.Logger(t),
		SessionSecret: "test-secret",
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &env{db: d, srv: srv}
}

func (e *env) createUser(t *testing.T, username, password, role string) *auth.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &auth.User{Username: username, Password: hashed, Role: role}
	if err := auth.NewGormStore(e.db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// newClient returns a client with a cookie jar that does not follow
// redirects, so tests can assert on each hop.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *env) get(t *testing.T, c *http.Client, path string) (*http.Response, string) {
	t.Helper()
	resp, err := c.Get(e.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *env) post(t *testing.T, c *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := c.PostForm(e.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (e *env) login(t *testing.T, c *http.Client, username, password string) *http.Response {
	t.Helper()
	resp, _ := e.post(t, c, "/login", url.Values{"username": {username}, "password": {password}})
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 to %s, got %d", location, resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func countNotifications(t *testing.T, d *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := d.Model(&notifications.Notification{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAdminAddsNotification(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "admin", "adminpw", auth.RoleAdmin)
	c := newClient(t)

	expectRedirect(t, e.login(t, c, "admin", "adminpw"), "/notifications")

	resp, body := e.get(t, c, "/notifications/add")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `action="/notifications/add"`) {
		t.Fatalf("expected add form, got %d", resp.StatusCode)
	}

	_, _ = e.post(t, c, "/notifications/add", url.Values{"content": {"older"}, "note": {""}})
	resp, _ = e.post(t, c, "/notifications/add", url.Values{"content": {"X"}, "note": {"Y"}})
	expectRedirect(t, resp, "/notifications")

	resp, body = e.get(t, c, "/notifications")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	first := strings.Index(body, `class="notification"`)
	if first < 0 {
		t.Fatalf("expected notification rows, got: %s", body)
	}
	head := body[first:]
	if !strings.HasPrefix(head, `class="notification" data-id="2"`) || strings.Index(head, "X") > strings.Index(head, "older") {
		t.Errorf("expected the new notification first, got: %s", head)
	}
	if !strings.Contains(body, "Notification added.") {
		t.Error("expected success flash on the list page")
	}
}

func TestRootRedirects(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "u", "pw", auth.RoleUser)
	c := newClient(t)

	resp, _ := e.get(t, c, "/")
	expectRedirect(t, resp, "/login")

	e.login(t, c, "u", "pw")
	resp, _ = e.get(t, c, "/")
	expectRedirect(t, resp, "/notifications")
}

func TestLogoutLocksGatedRoutes(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "admin", "pw", auth.RoleAdmin)
	c := newClient(t)

	e.login(t, c, "admin", "pw")
	if resp, _ := e.get(t, c, "/notifications"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 while logged in, got %d", resp.StatusCode)
	}

	resp, _ := e.get(t, c, "/logout")
	expectRedirect(t, resp, "/login")

	for _, path := range []string{"/", "/notifications", "/notifications/1", "/notifications/add", "/users", "/users/1"} {
		resp, _ := e.get(t, c, path)
		expectRedirect(t, resp, "/login")
	}
}

func TestNonAdminIsDenied(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", "pw", auth.RoleAdmin)
	e.createUser(t, "user", "pw", auth.RoleUser)
	c := newClient(t)

	expectRedirect(t, e.login(t, c, "user", "pw"), "/notifications")

	gets := []string{"/users", "/users/add", "/notifications/add", "/notifications/edit/1", "/users/edit/1"}
	for _, path := range gets {
		resp, _ := e.get(t, c, path)
		expectRedirect(t, resp, "/notifications")
	}

	resp, _ := e.post(t, c, "/notifications/add", url.Values{"content": {"sneaky"}})
	expectRedirect(t, resp, "/notifications")
	if n := countNotifications(t, e.db); n != 0 {
		t.Errorf("expected no notification to be created, got %d", n)
	}

	resp, _ = e.post(t, c, "/users/delete/"+itoa(admin.ID), url.Values{})
	expectRedirect(t, resp, "/notifications")
	if _, err := auth.NewGormStore(e.db).FindByID(context.Background(), admin.ID); err != nil {
		t.Errorf("expected admin to survive, got %v", err)
	}

	_, body := e.get(t, c, "/notifications")
	if !strings.Contains(body, "admin required") {
		t.Error("expected denial notice on the list page")
	}
}

// TestRoleDowngradeAppliesImmediately verifies the admin gate ignores the role
// stored in the session cookie.
func TestRoleDowngradeAppliesImmediately(t *testing.T) {
	e := newEnv(t)
	admin := e.createUser(t, "admin", "pw", auth.RoleAdmin)
	c := newClient(t)

	e.login(t, c, "admin", "pw")
	if resp, _ := e.get(t, c, "/users"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected admin access, got %d", resp.StatusCode)
	}

	if err := e.db.Model(&auth.User{}).Where("id = ?", admin.ID).Update("role", auth.RoleUser).Error; err != nil {
		t.Fatalf("downgrade: %v", err)
	}

	resp, _ := e.get(t, c, "/users")
	expectRedirect(t, resp, "/notifications")

	_, body := e.get(t, c, "/notifications")
	if strings.Contains(body, `href="/users"`) || strings.Contains(body, "/notifications/add") {
		t.Errorf("expected admin links hidden after downgrade, got: %s", body)
	}
}

func TestDeletedUserIsLoggedOut(t *testing.T) {
	e := newEnv(t)
	u := e.createUser(t, "gone", "pw", auth.RoleUser)
	c := newClient(t)

	expectRedirect(t, e.login(t, c, "gone", "pw"), "/notifications")
	if err := auth.NewGormStore(e.db).Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	resp, _ := e.get(t, c, "/notifications")
	expectRedirect(t, resp, "/login")

	_, body := e.get(t, c, "/login")
	if strings.Contains(body, "gone") {
		t.Errorf("expected no identity on the login page, got: %s", body)
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)

	resp, body := e.get(t, c, "/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "Not found") {
		t.Errorf("expected 404 page, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)

	resp, body := e.get(t, c, "/healthz")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Errorf("expected ok, got %d %q", resp.StatusCode, body)
	}
}

func TestHealthz_DatabaseDown(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)

	sqlDB, err := e.db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	resp, _ := e.get(t, c, "/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := newEnv(t)
	c := newClient(t)

	resp, _ := e.get(t, c, "/login")
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Errorf("expected X-Frame-Options, got %q", resp.Header.Get("X-Frame-Options"))
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
