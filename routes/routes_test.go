package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/config"
	"restaurant-dashboard/handlers"
	"restaurant-dashboard/middleware"
	"restaurant-dashboard/mockapi"
	"restaurant-dashboard/models"
	"restaurant-dashboard/session"
	"restaurant-dashboard/workspace"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t        *testing.T
	router   *gin.Engine
	registry *workspace.Registry
	polls    *atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, time.Hour, time.Hour)
}

// newHarnessWith counts the dashboard's full order-list fetches in polls
func newHarnessWith(t *testing.T, sessionTTL, pollInterval time.Duration) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	apiDB, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(dir, "api.db")}, mockapi.Models...)
	require.NoError(t, err)
	backend := mockapi.NewServer(apiDB, mockapi.Options{Secret: "test-secret"})
	require.NoError(t, backend.Seed("admin@test.local", "admin123"))
	polls := &atomic.Int32{}
	backendRouter := backend.Router()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders/admin/all" {
			polls.Add(1)
		}
		backendRouter.ServeHTTP(w, r)
	}))
	t.Cleanup(api.Close)

	sessDB, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(dir, "sessions.db")})
	require.NoError(t, err)
	store, err := session.NewDBStore(sessDB)
	require.NoError(t, err)
	sessions := session.NewManager(store, sessionTTL)

	ctx, cancel := context.WithCancel(context.Background())
	base := apiclient.New(api.URL+"/api", api.Client())
	registry := workspace.NewRegistry(ctx, base, workspace.Settings{PollInterval: pollInterval, StatsConcurrency: 2})
	t.Cleanup(func() {
		registry.Close()
		cancel()
	})

	r := gin.New()
	SetupRoutes(r, handlers.New(sessions, registry, apiclient.NewAPI(base), false), sessions)
	return &harness{t: t, router: r, registry: registry, polls: polls}
}

func (h *harness) do(method, path string, body string, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	payload := ""
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		payload = string(raw)
	}
	return h.do(method, path, payload, "application/json", cookie)
}

func (h *harness) form(path string, values url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, path, values.Encode(), "application/x-www-form-urlencoded", cookie)
}

func (h *harness) login(email, password string) *http.Cookie {
	h.t.Helper()
	rec := h.form("/login", url.Values{"email": {email}, "password": {password}}, nil)
	require.Equal(h.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	return sessionCookie(h.t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndStateMachine(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", "", "", nil).Code)

	body := decode(t, h.do(http.MethodGet, "/state-machine", "", "", nil))
	assert.Len(t, body["statuses"], len(models.AllStatuses))
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/admin", "/admin/categories", "/chef/orders", "/driver/orders", "/cart", "/profile"} {
		rec := h.do(http.MethodGet, path, "", "", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), rec.Header().Get("Location"), path)
	}
}

func TestLoginRedirectsHomeOrToNext(t *testing.T) {
	h := newHarness(t)
	rec := h.form("/login", url.Values{"email": {"admin@test.local"}, "password": {"admin123"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = h.form("/login", url.Values{
		"email": {"admin@test.local"}, "password": {"admin123"}, "next": {"/admin/orders"},
	}, nil)
	assert.Equal(t, "/admin/orders", rec.Header().Get("Location"))

	rec = h.form("/login", url.Values{
		"email": {"admin@test.local"}, "password": {"admin123"}, "next": {"//evil.example"},
	}, nil)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	rec = h.form("/login", url.Values{"email": {"admin@test.local"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec)["error"])
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	cookie := h.login("admin@test.local", "admin123")
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/admin", "", "", cookie).Code)
	assert.Equal(t, 1, h.registry.Len())

	rec := h.do(http.MethodPost, "/logout", "", "", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, h.registry.Len())
	assert.Equal(t, http.StatusSeeOther, h.do(http.MethodGet, "/admin", "", "", cookie).Code)
}

func TestAdminCategoryScreen(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@test.local", "admin123")

	list := decode(t, h.do(http.MethodGet, "/admin/categories", "", "", admin))
	assert.Equal(t, "READY", list["state"])
	assert.Equal(t, "No categories yet", list["placeholder"])

	rec := h.json(http.MethodPost, "/admin/categories", map[string]string{"name": " "}, admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]interface{})
	assert.Equal(t, "is required", fields["name"])

	rec = h.json(http.MethodPost, "/admin/categories", map[string]string{"name": "Bowls", "icon": "🥗"}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap := decode(t, rec)
	items := snap["items"].([]interface{})
	require.Len(t, items, 1)
	id := uint(items[0].(map[string]interface{})["id"].(float64))

	rec = h.do(http.MethodPost, fmt.Sprintf("/admin/categories/%d/edit", id), "", "", admin)
	assert.Equal(t, "EDITING", decode(t, rec)["mode"])
	rec = h.json(http.MethodPut, fmt.Sprintf("/admin/categories/%d", id), map[string]string{"name": "Poke bowls"}, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap = decode(t, rec)
	assert.Equal(t, "IDLE", snap["mode"])
	item := snap["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Poke bowls", item["name"])
	assert.Equal(t, "🥗", item["icon"])

	rec = h.do(http.MethodPost, "/admin/categories/delete/confirm", "", "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.do(http.MethodPost, fmt.Sprintf("/admin/categories/%d/delete", id), "", "", admin)
	rec = h.do(http.MethodPost, "/admin/categories/delete/confirm", "", "", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode(t, rec)["items"])
}

func TestOrderJourneyAcrossRoles(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@test.local", "admin123")

	rec := h.json(http.MethodPost, "/admin/dishes", map[string]interface{}{"name": "Soup", "price": 8.5}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dishID := uint(decode(t, rec)["items"].([]interface{})[0].(map[string]interface{})["id"].(float64))

	rec = h.json(http.MethodPost, "/admin/users", map[string]string{
		"name": "Chef", "email": "chef@test.local", "role": "chef", "password": "chef123",
	}, admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// a client signs up and orders two soups
	rec = h.form("/register", url.Values{
		"name": {"Ada Lovelace"}, "email": {"ada@test.local"}, "password": {"secret1"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/menu", rec.Header().Get("Location"))
	client := sessionCookie(t, rec)

	assert.Equal(t, http.StatusSeeOther, h.do(http.MethodGet, "/admin", "", "", client).Code)
	rec = h.do(http.MethodPost, fmt.Sprintf("/cart/%d/add", dishID), "", "", client)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.do(http.MethodPost, fmt.Sprintf("/cart/%d/increment", dishID), "", "", client)
	h.do(http.MethodPost, fmt.Sprintf("/cart/%d/increment", dishID), "", "", client)
	rec = h.do(http.MethodPost, fmt.Sprintf("/cart/%d/add", dishID), "", "", client)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 17.0, decode(t, rec)["total"])

	rec = h.json(http.MethodPost, "/cart/checkout", map[string]string{"address": "1 rue de la Paix"}, client)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode(t, rec)["order"].(map[string]interface{})
	assert.Equal(t, "EN_ATTENTE", order["status"])
	orderID := uint(order["id"].(float64))

	rec = h.json(http.MethodPost, "/cart/checkout", nil, client)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mine := decode(t, h.do(http.MethodGet, "/orders", "", "", client))
	assert.Equal(t, 1.0, mine["count"])

	// the kitchen takes it
	chef := h.login("chef@test.local", "chef123")
	board := decode(t, h.do(http.MethodGet, "/chef/orders", "", "", chef))
	rows := board["rows"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"EN_PREPARATION", "ANNULEE"}, rows[0].(map[string]interface{})["next"])

	statusPath := fmt.Sprintf("/chef/orders/%d/status", orderID)
	rec = h.json(http.MethodPut, statusPath, map[string]string{"status": "LIVRE"}, chef)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = h.json(http.MethodPut, statusPath, map[string]interface{}{"status": "EN_ATTENTE", "override": true}, chef)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.json(http.MethodPut, statusPath, map[string]string{"status": "EN_PREPARATION"}, chef)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// too late for the client to cancel
	rec = h.do(http.MethodPost, fmt.Sprintf("/orders/%d/cancel", orderID), "", "", client)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	dash := decode(t, h.do(http.MethodGet, "/admin/orders", "", "", admin))
	stats := dash["stats"].(map[string]interface{})
	assert.Equal(t, 1.0, stats["totalOrders"])
}

func TestExpiredSessionReleasesWorkspace(t *testing.T) {
	h := newHarnessWith(t, 300*time.Millisecond, 20*time.Millisecond)
	cookie := h.login("admin@test.local", "admin123")

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/admin", "", "", cookie).Code)
	require.Equal(t, 1, h.registry.Len())
	require.Eventually(t, func() bool { return h.polls.Load() > 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(350 * time.Millisecond)
	rec := h.do(http.MethodGet, "/admin", "", "", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, h.registry.Len())

	time.Sleep(30 * time.Millisecond)
	polled := h.polls.Load()
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, polled, h.polls.Load(), "dashboard kept polling after the session expired")
}
