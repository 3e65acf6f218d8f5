package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"restaurant-dashboard/models"
	"restaurant-dashboard/session"

	"github.com/gin-gonic/gin"
)

// SessionCookie carries the session id between browser and front-end
const SessionCookie = "restaurant_session"

const sessionKey = "session"

// LoadSession resolves the session cookie and injects the session into the
// context. Requests without a live session simply carry none. ended, when
// set, is told about every cookie whose session is expired or gone.
func LoadSession(mgr *session.Manager, ended func(sessionID string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			c.Next()
			return
		}
		sess, err := mgr.Resolve(c.Request.Context(), id)
		if err != nil {
			if ended != nil && sessionGone(err) {
				ended(id)
			}
			ClearSessionCookie(c)
			c.Next()
			return
		}
		c.Set(sessionKey, sess)
		c.Set("role", string(sess.User.Role))
		c.Next()
	}
}

func sessionGone(err error) bool {
	return errors.Is(err, session.ErrExpired) ||
		errors.Is(err, session.ErrNotFound) ||
		errors.Is(err, session.ErrInvalidSession)
}

// RoleRequired lets through callers holding one of the roles and sends
// everyone else to the login view.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.IsAllowed(session.CurrentUser(GetSession(c)), roles...) {
			c.Next()
			return
		}
		redirectToLogin(c)
	}
}

// SignedIn lets through any caller with a live session
func SignedIn() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin, models.RoleChef, models.RoleDriver, models.RoleClient)
}

func redirectToLogin(c *gin.Context) {
	target := "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// GetSession returns the caller's session, nil when anonymous
func GetSession(c *gin.Context) *session.Session {
	val, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := val.(*session.Session)
	return sess
}

// GetUser returns the caller's user, nil when anonymous
func GetUser(c *gin.Context) *models.User {
	return session.CurrentUser(GetSession(c))
}

func SetSessionCookie(c *gin.Context, id string, expires time.Time, secure bool) {
	maxAge := int(time.Until(expires).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// SafeNext keeps post-login redirects on this site
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

// CORS mirrors the header set the backend expects from browsers
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
