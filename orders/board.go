// Package orders keeps the order list of a kitchen, driver or admin screen
// and drives status changes through the order state machine.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/dashboard"
	"restaurant-dashboard/models"
	"restaurant-dashboard/statemachine"
	"restaurant-dashboard/views"
)

var ErrUnknownOrder = errors.New("order is not on this board")

// FetchFunc loads the orders a board shows
type FetchFunc func(ctx context.Context) ([]models.Order, error)

type StatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, orderID uint, change apiclient.StatusChange) (*models.Order, error)
}

type Board struct {
	mu      sync.Mutex
	actor   models.UserRole
	fetch   FetchFunc
	updater StatusUpdater
	orders  []models.Order
	loaded  bool
	notice  *views.Notice
	now     func() time.Time
}

func NewBoard(actor models.UserRole, fetch FetchFunc, updater StatusUpdater) *Board {
	return &Board{actor: actor, fetch: fetch, updater: updater, now: time.Now}
}

// Row is one order with the statuses its actor may pick next
type Row struct {
	models.Order
	Next []models.OrderStatus `json:"next"`
}

type Snapshot struct {
	Actor  models.UserRole `json:"actor"`
	Loaded bool            `json:"loaded"`
	Rows   []Row           `json:"rows"`
	Stats  dashboard.Stats `json:"stats"`
	Notice *views.Notice   `json:"notice,omitempty"`
}

// Fetch replaces the list. A failed fetch keeps the previous one.
func (b *Board) Fetch(ctx context.Context) error {
	list, err := b.fetch(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.notice = &views.Notice{Level: views.LevelError, Message: apiclient.UserMessage(err)}
		return err
	}
	b.orders = list
	b.loaded = true
	return nil
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows := make([]Row, len(b.orders))
	for i, o := range b.orders {
		rows[i] = Row{Order: o, Next: statemachine.ValidNext(o.Status, b.actor)}
	}
	return Snapshot{
		Actor:  b.actor,
		Loaded: b.loaded,
		Rows:   rows,
		Stats:  dashboard.Aggregate(b.orders),
		Notice: b.notice,
	}
}

func (b *Board) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = nil
}

func (b *Board) find(id uint) (int, bool) {
	for i, o := range b.orders {
		if o.ID == id {
			return i, true
		}
	}
	return -1, false
}

// ChangeStatus moves an order to a new status. Unless override is set the
// move must be legal for the board's actor; override is an admin-only
// correction tool. The local entry changes only once the backend accepted.
func (b *Board) ChangeStatus(ctx context.Context, orderID uint, to models.OrderStatus, override bool, note string) (*models.Order, error) {
	b.mu.Lock()
	idx, ok := b.find(orderID)
	if !ok {
		b.mu.Unlock()
		return nil, ErrUnknownOrder
	}
	from := b.orders[idx].Status
	b.mu.Unlock()

	var err error
	if override {
		err = statemachine.Override(from, to, b.actor)
	} else {
		err = statemachine.CanTransition(from, to, b.actor)
	}
	if err != nil {
		b.setError(err)
		return nil, err
	}

	updated, err := b.updater.UpdateOrderStatus(ctx, orderID, apiclient.StatusChange{
		Status:   to,
		Override: override,
		Note:     note,
	})
	if err != nil {
		b.setError(err)
		return nil, err
	}
	if override {
		log.Printf("⚠️ order %d status overridden %s → %s by %s", orderID, from, to, b.actor)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok = b.find(orderID)
	if !ok {
		return updated, nil
	}
	b.orders[idx].Status = to
	if updated != nil && !updated.UpdatedAt.IsZero() {
		b.orders[idx].UpdatedAt = updated.UpdatedAt
	} else {
		b.orders[idx].UpdatedAt = b.now()
	}
	b.notice = &views.Notice{Level: views.LevelSuccess, Message: fmt.Sprintf("Order #%d is now %s", orderID, to)}
	result := b.orders[idx]
	return &result, nil
}

func (b *Board) setError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = &views.Notice{Level: views.LevelError, Message: apiclient.UserMessage(err)}
}
