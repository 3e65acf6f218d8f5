package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	UserID     *uint           `json:"userId,omitempty" gorm:"uniqueIndex"`
	FirstName  string          `json:"firstName" gorm:"not null" validate:"notblank"`
	LastName   string          `json:"lastName" gorm:"not null" validate:"notblank"`
	Email      string          `json:"email" validate:"omitempty,email"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	Active     bool            `json:"active" gorm:"default:true"`
	OrderCount int             `json:"orderCount" gorm:"-"`
	TotalSpent decimal.Decimal `json:"totalSpent" gorm:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (c Client) EntityID() uint      { return c.ID }
func (c Client) IsActive() bool      { return c.Active }
func (c Client) DependentCount() int { return c.OrderCount }

// ClientStats is the per-client figure returned by /clients/:id/stats
type ClientStats struct {
	ClientID    uint            `json:"clientId"`
	OrderCount  int             `json:"orderCount"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	LastOrderAt *time.Time      `json:"lastOrderAt,omitempty"`
}

// ClientsOverview is the aggregate returned by /clients/stats
type ClientsOverview struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Blocked int `json:"blocked"`
}
