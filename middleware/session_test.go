package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"restaurant-dashboard/config"
	"restaurant-dashboard/models"
	"restaurant-dashboard/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	return newManagerTTL(t, time.Hour)
}

func newManagerTTL(t *testing.T, ttl time.Duration) *session.Manager {
	t.Helper()
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "sessions.db")})
	require.NoError(t, err)
	store, err := session.NewDBStore(db)
	require.NoError(t, err)
	return session.NewManager(store, ttl)
}

type endedLog struct {
	mu  sync.Mutex
	ids []string
}

func (l *endedLog) record(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

func (l *endedLog) seen() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

func newRouter(mgr *session.Manager) *gin.Engine {
	return newRouterReporting(mgr, nil)
}

func newRouterReporting(mgr *session.Manager, ended func(string)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoadSession(mgr, ended))
	r.GET("/whoami", func(c *gin.Context) {
		if user := GetUser(c); user != nil {
			c.String(http.StatusOK, string(user.Role))
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/kitchen", RoleRequired(models.RoleChef, models.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "welcome")
	})
	return r
}

func get(r *gin.Engine, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRoleRequired(t *testing.T) {
	mgr := newManager(t)
	r := newRouter(mgr)
	ctx := context.Background()

	chef, err := mgr.Start(ctx, "opaque", models.User{ID: 2, Email: "chef@test.local", Role: models.RoleChef})
	require.NoError(t, err)
	driver, err := mgr.Start(ctx, "opaque", models.User{ID: 3, Email: "driver@test.local", Role: models.RoleDriver})
	require.NoError(t, err)

	rec := get(r, "/kitchen", &http.Cookie{Name: SessionCookie, Value: chef.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "welcome", rec.Body.String())

	rec = get(r, "/kitchen?day=today", &http.Cookie{Name: SessionCookie, Value: driver.ID})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fkitchen%3Fday%3Dtoday", rec.Header().Get("Location"))

	rec = get(r, "/kitchen", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLoadSession_UnknownCookieIsCleared(t *testing.T) {
	ended := &endedLog{}
	r := newRouterReporting(newManager(t), ended.record)
	rec := get(r, "/whoami", &http.Cookie{Name: SessionCookie, Value: "gone"})
	assert.Equal(t, "anonymous", rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.Equal(t, []string{"gone"}, ended.seen())
}

func TestLoadSession_ExpiredSessionIsReported(t *testing.T) {
	mgr := newManagerTTL(t, 30*time.Millisecond)
	sess, err := mgr.Start(context.Background(), "opaque", models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	ended := &endedLog{}
	r := newRouterReporting(mgr, ended.record)
	cookie := &http.Cookie{Name: SessionCookie, Value: sess.ID}

	assert.Equal(t, "admin", get(r, "/whoami", cookie).Body.String())
	assert.Empty(t, ended.seen())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "anonymous", get(r, "/whoami", cookie).Body.String())
	assert.Equal(t, []string{sess.ID}, ended.seen())

	// no cookie, nothing to report
	get(r, "/whoami", nil)
	assert.Len(t, ended.seen(), 1)
}

func TestLoadSession_AttachesUser(t *testing.T) {
	mgr := newManager(t)
	sess, err := mgr.Start(context.Background(), "opaque", models.User{ID: 1, Role: "livreur"})
	require.NoError(t, err)

	rec := get(newRouter(mgr), "/whoami", &http.Cookie{Name: SessionCookie, Value: sess.ID})
	assert.Equal(t, "driver", rec.Body.String())
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/admin/orders", SafeNext("/admin/orders"))
	assert.Equal(t, "", SafeNext("https://evil.example"))
	assert.Equal(t, "", SafeNext("//evil.example"))
	assert.Equal(t, "", SafeNext(""))
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/menu", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/menu", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
