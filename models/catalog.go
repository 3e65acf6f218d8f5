package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Backends send and expect plain JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null" validate:"notblank"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Dishes      []Dish    `json:"dishes,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c Category) EntityID() uint { return c.ID }

// CategorySummary is a category with the number of dishes filed under it
type CategorySummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	ItemCount int    `json:"itemCount"`
}

// Upload is an image attached to a create or update call. It never
// travels as JSON; the API client switches to multipart when it is set.
type Upload struct {
	Filename string
	Content  []byte
}

type Dish struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null" validate:"notblank"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"gte=0"`
	CategoryID  uint            `json:"categoryId" gorm:"index"`
	PrepTime    int             `json:"prepTime" validate:"gte=0"` // minutes
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	Image       string          `json:"image"`
	IsPopular   bool            `json:"isPopular"`
	IsNew       bool            `json:"isNew"`
	Upload      *Upload         `json:"-" gorm:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (d Dish) EntityID() uint      { return d.ID }
func (d Dish) Attachment() *Upload { return d.Upload }

// ImageSearchResult is what the backend returns for a photo lookup
type ImageSearchResult struct {
	Category   *Category `json:"category"`
	Confidence float64   `json:"confidence"`
	Dishes     []Dish    `json:"dishes"`
}
