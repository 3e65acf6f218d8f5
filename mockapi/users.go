package mockapi

import (
	"net/http"

	"restaurant-dashboard/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers returns all accounts, optionally narrowed by ?role=
func (s *Server) ListUsers(c *gin.Context) {
	var users []models.User
	query := s.db.Order("name")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	// a client account depends on the orders of its client record
	var links []struct {
		UserID     uint
		OrderCount int
	}
	s.db.Model(&models.Order{}).
		Select("clients.user_id AS user_id, COUNT(orders.id) AS order_count").
		Joins("JOIN clients ON clients.id = orders.client_id").
		Where("clients.user_id IS NOT NULL").
		Group("clients.user_id").
		Scan(&links)
	counts := make(map[uint]int, len(links))
	for _, l := range links {
		counts[l.UserID] = l.OrderCount
	}
	for i := range users {
		users[i].OrderCount = counts[users[i].ID]
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) GetUser(c *gin.Context) {
	var user models.User
	if !s.findOr404(c, &user, "User not found") {
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser opens a staff or admin account. Client accounts come from
// registration, which also creates their client record.
func (s *Server) CreateUser(c *gin.Context) {
	var user models.User
	if !bindEntity(c, &user) {
		return
	}
	if len(user.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
		return
	}
	var existing int64
	s.db.Model(&models.User{}).Where("email = ?", user.Email).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user.ID = 0
	user.PasswordHash = string(hash)
	user.Password = ""
	user.Active = true
	if err := s.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) UpdateUser(c *gin.Context) {
	var user models.User
	if !s.findOr404(c, &user, "User not found") {
		return
	}
	var req models.User
	if !bindEntity(c, &req) {
		return
	}
	update := map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
		"role":  req.Role,
		"phone": req.Phone,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		update["password_hash"] = string(hash)
	}
	if err := s.db.Model(&user).Updates(update).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	s.db.First(&user, user.ID)
	c.JSON(http.StatusOK, user)
}

func (s *Server) DeactivateUser(c *gin.Context) {
	s.setUserActive(c, false)
}

func (s *Server) ActivateUser(c *gin.Context) {
	s.setUserActive(c, true)
}

func (s *Server) setUserActive(c *gin.Context, active bool) {
	var user models.User
	if !s.findOr404(c, &user, "User not found") {
		return
	}
	if !active && user.ID == getUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot block your own account"})
		return
	}
	if err := s.db.Model(&user).Update("active", active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	msg := "User blocked"
	if active {
		msg = "User unblocked"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "user": user})
}

// DeleteUser removes an account, refused while its client record has orders
func (s *Server) DeleteUser(c *gin.Context) {
	var user models.User
	if !s.findOr404(c, &user, "User not found") {
		return
	}
	if user.ID == getUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}
	var orders int64
	s.db.Model(&models.Order{}).
		Joins("JOIN clients ON clients.id = orders.client_id").
		Where("clients.user_id = ?", user.ID).
		Count(&orders)
	if orders > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User has orders; block the account instead"})
		return
	}
	if err := s.db.Where("user_id = ?", user.ID).Delete(&models.Client{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	if err := s.db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
