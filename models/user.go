package models

import (
	"strings"
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleChef   UserRole = "chef"
	RoleDriver UserRole = "driver"
	RoleClient UserRole = "client"
)

// ParseRole normalizes a role string, accepting the French and legacy aliases
// still sent by older accounts.
func ParseRole(s string) (UserRole, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "chef", "cuisinier":
		return RoleChef, true
	case "driver", "livreur":
		return RoleDriver, true
	case "client", "customer":
		return RoleClient, true
	}
	return "", false
}

// HomePath is the route subtree a role lands on after login
func (r UserRole) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleChef:
		return "/chef/orders"
	case RoleDriver:
		return "/driver/orders"
	}
	return "/menu"
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null" validate:"notblank"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Password     string    `json:"password,omitempty" gorm:"-"` // write-only, for account creation
	Role         UserRole  `json:"role" gorm:"not null;default:'client'" validate:"required,oneof=admin chef driver client"`
	Phone        string    `json:"phone"`
	Active       bool      `json:"active" gorm:"default:true"`
	ClientID     *uint     `json:"clientId,omitempty" gorm:"-"` // set for client accounts
	OrderCount   int       `json:"orderCount" gorm:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) EntityID() uint { return u.ID }
func (u User) IsActive() bool { return u.Active }

// DependentCount counts orders placed by or handled by the user
func (u User) DependentCount() int { return u.OrderCount }

var avatarPalette = []string{
	"#F44336", "#E91E63", "#9C27B0", "#3F51B5",
	"#2196F3", "#009688", "#4CAF50", "#FF9800",
}

// AvatarColor picks a stable avatar color for an entity id.
func AvatarColor(id uint) string {
	return avatarPalette[int(id%uint(len(avatarPalette)))]
}
