package httpapp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	httpapp "inventory/internal/app/http"
	"inventory/internal/controllers"
	"inventory/internal/models"
	"inventory/internal/services"
	"inventory/internal/storage"
	"inventory/internal/storage/memory"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	username   = "admin"
	cookieName = "inventory.sid"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type suite struct {
	t        *testing.T
	server   *httptest.Server
	client   *http.Client
	password string
}

func newSuite(t *testing.T, store storage.AppStore, staticDir string) *suite {
	t.Helper()

	password := gofakeit.Password(true, true, true, false, false, 12)
	authS, err := services.NewAuthService(discardLog, username, password, bcrypt.MinCost)
	require.NoError(t, err)

	sessions := services.NewSessionManager(discardLog, "test-session-secret", time.Hour)
	appC := controllers.NewAppController(services.NewAppService(discardLog, store))
	authC := controllers.NewAuthController(discardLog, authS, sessions, controllers.CookieConfig{Name: cookieName})

	srv := httptest.NewServer(httpapp.NewRouter(discardLog, staticDir, cookieName, appC, authC, sessions))
	t.Cleanup(srv.Close)

	return &suite{t: t, server: srv, client: &http.Client{}, password: password}
}

func (s *suite) do(method, path string, body any, cookie *http.Cookie) *http.Response {
	s.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, r)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *suite) login() *http.Cookie {
	s.t.Helper()

	resp := s.do(http.MethodPost, "/api/login", map[string]string{"username": username, "password": s.password}, nil)
	require.Equal(s.t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	s.t.Fatal("no session cookie")
	return nil
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestLogin_ThenListEmpty(t *testing.T) {
	s := newSuite(t, memory.New(), "")

	resp := s.do(http.MethodPost, "/api/login", map[string]string{"username": username, "password": s.password}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "1", "username": "admin"}, body["user"])

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)

	resp = s.do(http.MethodGet, "/api/apps", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLogin_FailCases(t *testing.T) {
	s := newSuite(t, memory.New(), "")

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{name: "Wrong password", body: map[string]string{"username": username, "password": "wrong"}, wantStatus: http.StatusUnauthorized},
		{name: "Unknown username", body: map[string]string{"username": gofakeit.Username(), "password": s.password}, wantStatus: http.StatusUnauthorized},
		{name: "Missing password", body: map[string]string{"username": username}, wantStatus: http.StatusUnauthorized},
		{name: "Empty username", body: map[string]string{"username": "", "password": s.password}, wantStatus: http.StatusUnauthorized},
		{name: "Malformed body", body: "{", wantStatus: http.StatusBadRequest},
	}

	var unauthorized []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(http.MethodPost, "/api/login", tt.body, nil)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Empty(t, resp.Cookies())

			body := decode[map[string]any](t, resp)
			if tt.wantStatus == http.StatusUnauthorized {
				unauthorized = append(unauthorized, body["error"].(string))
			}
		})
	}

	require.Len(t, unauthorized, 4)
	for _, msg := range unauthorized {
		assert.Equal(t, "Invalid username or password", msg)
	}
}

func TestApps_RequireSession(t *testing.T) {
	s := newSuite(t, memory.New(), "")
	tampered := &http.Cookie{Name: cookieName, Value: "eyJhbGciOiJIUzI1NiJ9.e30.bogus"}

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/apps", nil},
		{http.MethodGet, "/api/apps/some-id", nil},
		{http.MethodPost, "/api/apps", map[string]string{"name": "x"}},
		{http.MethodPut, "/api/apps/some-id", map[string]string{"name": "x"}},
		{http.MethodDelete, "/api/apps/some-id", nil},
	}

	for _, rt := range routes {
		for _, cookie := range []*http.Cookie{nil, tampered} {
			resp := s.do(rt.method, rt.path, rt.body, cookie)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", rt.method, rt.path)
			assert.Equal(t, map[string]any{"error": "Unauthorized"}, decode[map[string]any](t, resp))
		}
	}
}

func TestApps_CRUDScenario(t *testing.T) {
	s := newSuite(t, memory.New(), "")
	cookie := s.login()

	resp := s.do(http.MethodPost, "/api/apps", map[string]any{
		"name":      "Portfolio",
		"platform":  "Railway",
		"status":    "Active",
		"category":  "Personal",
		"id":        "client-chosen",
		"updatedAt": "2000-01-01T00:00:00Z",
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)

	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotEqual(t, "client-chosen", id)
	assert.NotEqual(t, "2000-01-01T00:00:00Z", created["updatedAt"])
	assert.NotEmpty(t, created["updatedAt"])
	for _, field := range []string{"icon", "liveUrl", "repositoryUrl", "notes"} {
		v, present := created[field]
		assert.True(t, present, field)
		assert.Nil(t, v, field)
	}

	resp = s.do(http.MethodGet, "/api/apps/"+id, nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created, decode[map[string]any](t, resp))

	time.Sleep(2 * time.Millisecond)
	resp = s.do(http.MethodPut, "/api/apps/"+id, map[string]any{"status": "Archived"}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[map[string]any](t, resp)

	assert.Equal(t, "Archived", updated["status"])
	assert.NotEqual(t, created["updatedAt"], updated["updatedAt"])
	for k, v := range created {
		if k == "status" || k == "updatedAt" {
			continue
		}
		assert.Equal(t, v, updated[k], k)
	}

	resp = s.do(http.MethodPut, "/api/apps/"+id, map[string]any{"notes": "hello", "liveUrl": "https://portfolio.example"}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated = decode[map[string]any](t, resp)
	assert.Equal(t, "hello", updated["notes"])
	assert.Equal(t, "https://portfolio.example", updated["liveUrl"])

	resp = s.do(http.MethodPut, "/api/apps/"+id, map[string]any{"notes": nil, "liveUrl": ""}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated = decode[map[string]any](t, resp)
	assert.Nil(t, updated["notes"])
	assert.Nil(t, updated["liveUrl"])

	resp = s.do(http.MethodGet, "/api/apps?status=Archived", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.App](t, resp), 1)

	resp = s.do(http.MethodGet, "/api/apps?category=Work", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.App](t, resp))

	resp = s.do(http.MethodDelete, "/api/apps/"+id, nil, cookie)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/api/apps/"+id, nil, cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/apps/"+id, nil, cookie)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "App not found"}, decode[map[string]any](t, resp))
}

func TestApps_UnknownIDs(t *testing.T) {
	s := newSuite(t, memory.New(), "")
	cookie := s.login()

	resp := s.do(http.MethodDelete, "/api/apps/unknown", nil, cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPut, "/api/apps/unknown", map[string]any{"name": "ghost"}, cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/apps", nil, cookie)
	assert.Empty(t, decode[[]models.App](t, resp))
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type invalidResponse struct {
	Error   string       `json:"error"`
	Details []fieldError `json:"details"`
}

func fields(details []fieldError) []string {
	var out []string
	for _, d := range details {
		out = append(out, d.Field)
	}
	return out
}

func TestApps_Validation(t *testing.T) {
	s := newSuite(t, memory.New(), "")
	cookie := s.login()

	valid := map[string]any{"name": "App", "platform": "Vercel", "status": "Paused", "category": "Work"}
	resp := s.do(http.MethodPost, "/api/apps", valid, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decode[models.App](t, resp).ID

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantFields []string
	}{
		{name: "create empty", method: http.MethodPost, path: "/api/apps", body: map[string]any{}, wantFields: []string{"name", "platform", "status", "category"}},
		{name: "create bad enums", method: http.MethodPost, path: "/api/apps", body: map[string]any{"name": "A", "platform": "B", "status": "Done", "category": "Hobby"}, wantFields: []string{"status", "category"}},
		{name: "create empty name", method: http.MethodPost, path: "/api/apps", body: map[string]any{"name": "", "platform": "B", "status": "Active", "category": "Work"}, wantFields: []string{"name"}},
		{name: "create wrong type", method: http.MethodPost, path: "/api/apps", body: map[string]any{"name": 12, "platform": "B", "status": "Active", "category": "Work", "notes": true}, wantFields: []string{"name", "notes"}},
		{name: "create malformed", method: http.MethodPost, path: "/api/apps", body: "not json", wantFields: []string{"body"}},
		{name: "update null required", method: http.MethodPut, path: "/api/apps/" + id, body: map[string]any{"name": nil}, wantFields: []string{"name"}},
		{name: "update bad status", method: http.MethodPut, path: "/api/apps/" + id, body: map[string]any{"status": "archived"}, wantFields: []string{"status"}},
		{name: "update bad id and body", method: http.MethodPut, path: "/api/apps/unknown", body: map[string]any{"category": 1}, wantFields: []string{"category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(tt.method, tt.path, tt.body, cookie)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decode[invalidResponse](t, resp)
			assert.Equal(t, "Invalid data", body.Error)
			assert.Equal(t, tt.wantFields, fields(body.Details))
		})
	}

	resp = s.do(http.MethodGet, "/api/apps/"+id, nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Paused", decode[models.App](t, resp).Status)
}

func TestAuthCheck_AndLogout(t *testing.T) {
	s := newSuite(t, memory.New(), "")

	resp := s.do(http.MethodGet, "/api/auth/check", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
	assert.Equal(t, map[string]any{"authenticated": false}, decode[map[string]any](t, resp))

	cookie := s.login()

	resp = s.do(http.MethodGet, "/api/auth/check", nil, cookie)
	assert.Equal(t, map[string]any{
		"authenticated": true,
		"user":          map[string]any{"id": "1", "username": "admin"},
	}, decode[map[string]any](t, resp))

	resp = s.do(http.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"success": true}, decode[map[string]any](t, resp))

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	resp = s.do(http.MethodGet, "/api/apps", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/auth/check", nil, cookie)
	assert.Equal(t, map[string]any{"authenticated": false}, decode[map[string]any](t, resp))

	resp = s.do(http.MethodPost, "/api/logout", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogin_ReplacesExistingSession(t *testing.T) {
	s := newSuite(t, memory.New(), "")

	first := s.login()
	resp := s.do(http.MethodPost, "/api/login", map[string]string{"username": username, "password": s.password}, first)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/apps", nil, first)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type brokenStore struct {
	storage.AppStore
}

var errDown = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func (brokenStore) Apps(context.Context) ([]models.App, error) { return nil, errDown }

func (brokenStore) App(context.Context, string) (models.App, error) {
	return models.App{}, errDown
}

func (brokenStore) SaveApp(context.Context, models.NewApp) (models.App, error) {
	return models.App{}, errDown
}

func (brokenStore) DeleteApp(context.Context, string) (bool, error) { return false, errDown }

func TestApps_StoreFailureIsGeneric(t *testing.T) {
	s := newSuite(t, brokenStore{}, "")
	cookie := s.login()

	tests := []struct {
		method string
		path   string
		body   any
		want   string
	}{
		{http.MethodGet, "/api/apps", nil, "Failed to fetch apps"},
		{http.MethodGet, "/api/apps/x", nil, "Failed to fetch app"},
		{http.MethodPost, "/api/apps", map[string]any{"name": "A", "platform": "B", "status": "Active", "category": "Work"}, "Failed to create app"},
		{http.MethodDelete, "/api/apps/x", nil, "Failed to delete app"},
	}

	for _, tt := range tests {
		resp := s.do(tt.method, tt.path, tt.body, cookie)
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"`+tt.want+`"}`, string(raw))
		assert.NotContains(t, string(raw), "connection refused")
	}
}

func TestHealthz(t *testing.T) {
	s := newSuite(t, memory.New(), "")

	resp := s.do(http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"status": "ok"}, decode[map[string]any](t, resp))
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>inventory</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))

	s := newSuite(t, memory.New(), dir)

	for path, want := range map[string]string{
		"/":             "<html>inventory</html>",
		"/workspace/42": "<html>inventory</html>",
		"/app.js":       "console.log(1)",
	} {
		resp := s.do(http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(raw), path)
	}

	resp := s.do(http.MethodGet, "/api/apps", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
