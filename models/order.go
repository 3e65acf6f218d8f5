package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents all possible states of a restaurant order
type OrderStatus string

const (
	StatusPending   OrderStatus = "EN_ATTENTE"
	StatusPreparing OrderStatus = "EN_PREPARATION"
	StatusReady     OrderStatus = "PRET"
	StatusShipping  OrderStatus = "EN_LIVRAISON"
	StatusDelivered OrderStatus = "LIVRE"
	StatusCancelled OrderStatus = "ANNULEE"
)

// AllStatuses lists statuses in lifecycle order
var AllStatuses = []OrderStatus{
	StatusPending, StatusPreparing, StatusReady, StatusShipping, StatusDelivered, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Order struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ClientID    uint            `json:"clientId" gorm:"not null;index"`
	Status      OrderStatus     `json:"status" gorm:"not null;default:'EN_ATTENTE'"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2)"`
	Address     string          `json:"address"`
	Notes       string          `json:"notes"`
	OrderDate   time.Time       `json:"orderDate"`
	Lines       []OrderLine     `json:"lines" gorm:"foreignKey:OrderID"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (o Order) EntityID() uint { return o.ID }

type OrderLine struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	OrderID   uint            `json:"-" gorm:"not null;index"`
	DishID    uint            `json:"dishId" gorm:"not null"`
	Name      string          `json:"name"` // snapshot name
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"` // snapshot price
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal is Σ unitPrice × quantity over the lines
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"not null;index"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uint        `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
