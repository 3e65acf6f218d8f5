package handlers

import (
	"log"
	"net/http"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/middleware"
	"restaurant-dashboard/models"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}

type RegisterRequest struct {
	Name     string `form:"name" json:"name" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
	Phone    string `form:"phone" json:"phone"`
	Address  string `form:"address" json:"address"`
}

// LoginPage describes the login view. Signed-in callers go straight home.
func (h *Handler) LoginPage(c *gin.Context) {
	if user := middleware.GetUser(c); user != nil {
		c.Redirect(http.StatusSeeOther, user.Role.HomePath())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":   "login",
		"next":   middleware.SafeNext(c.Query("next")),
		"fields": []string{"email", "password"},
	})
}

// Login authenticates against the backend and opens a browser session
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Public.Login(c.Request.Context(), apiclient.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(c, err, nil)
		return
	}
	h.openSession(c, res, req.Next)
}

// Register creates a client account and signs it in
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.Public.Register(c.Request.Context(), apiclient.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(c, err, nil)
		return
	}
	h.openSession(c, res, "")
}

func (h *Handler) openSession(c *gin.Context, res *apiclient.AuthResult, next string) {
	sess, err := h.Sessions.Start(c.Request.Context(), res.Token, res.User)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "This account has no usable role"})
		return
	}
	middleware.SetSessionCookie(c, sess.ID, sess.ExpiresAt, h.CookieSecure)
	log.Printf("🔑 %s signed in as %s", sess.User.Email, sess.User.Role)

	target := middleware.SafeNext(next)
	if target == "" {
		target = sess.User.Role.HomePath()
	}
	c.Redirect(http.StatusSeeOther, target)
}

// Logout ends the session and forgets its in-memory state
func (h *Handler) Logout(c *gin.Context) {
	if sess := middleware.GetSession(c); sess != nil {
		if err := h.Sessions.End(c.Request.Context(), sess.ID); err != nil {
			log.Printf("⚠️  could not delete session %s: %v", sess.ID, err)
		}
		h.Workspaces.Drop(sess.ID)
	}
	middleware.ClearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// GetProfile returns the signed-in user, refreshed from the backend
func (h *Handler) GetProfile(c *gin.Context) {
	ws := h.workspace(c)
	user, err := ws.API.Profile(c.Request.Context())
	if err != nil {
		respondError(c, err, gin.H{"user": middleware.GetUser(c)})
		return
	}
	h.rememberUser(c, *user)
	c.JSON(http.StatusOK, gin.H{"user": user, "avatarColor": models.AvatarColor(user.ID)})
}

// UpdateProfile changes the caller's display name and phone
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req apiclient.ProfileUpdate
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ws := h.workspace(c)
	user, err := ws.API.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	h.rememberUser(c, *user)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

func (h *Handler) rememberUser(c *gin.Context, user models.User) {
	sess := middleware.GetSession(c)
	if err := h.Sessions.UpdateUser(c.Request.Context(), sess, user); err != nil {
		log.Printf("⚠️  session %s keeps a stale user: %v", sess.ID, err)
	}
}
