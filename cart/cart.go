// Package cart is the in-memory basket of a signed-in client. Nothing here is
// persisted; the cart turns into a server order only on Submit.
package cart

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"restaurant-dashboard/models"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySelection = errors.New("choose a quantity before adding to the cart")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNoClient       = errors.New("order needs a client")
)

// OrderPlacer sends a finished order to the backend
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order models.Order) (*models.Order, error)
}

type Cart struct {
	mu sync.Mutex
	// selected holds the quantity picker of each dish card
	selected map[uint]int
	draft    map[uint]models.OrderLine
}

func New() *Cart {
	return &Cart{
		selected: map[uint]int{},
		draft:    map[uint]models.OrderLine{},
	}
}

// Increment raises a dish's picked quantity by one
func (c *Cart) Increment(dishID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected[dishID]++
	return c.selected[dishID]
}

// Decrement lowers a dish's picked quantity by one, never below zero
func (c *Cart) Decrement(dishID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.selected[dishID] - 1
	if n <= 0 {
		delete(c.selected, dishID)
		return 0
	}
	c.selected[dishID] = n
	return n
}

func (c *Cart) Selected(dishID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected[dishID]
}

// Selection returns the non-zero picks
func (c *Cart) Selection() map[uint]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint]int, len(c.selected))
	for id, q := range c.selected {
		out[id] = q
	}
	return out
}

// AddToCart moves the picked quantity of dish into the pending order, merging
// with any earlier line of the same dish. The price is snapshotted now.
func (c *Cart) AddToCart(dish models.Dish) (models.OrderLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	qty := c.selected[dish.ID]
	if qty <= 0 {
		return models.OrderLine{}, ErrEmptySelection
	}
	line, ok := c.draft[dish.ID]
	if !ok {
		line = models.OrderLine{DishID: dish.ID}
	}
	line.Name = dish.Name
	line.UnitPrice = dish.Price
	line.Quantity += qty
	c.draft[dish.ID] = line
	delete(c.selected, dish.ID)
	return line, nil
}

// Remove drops a dish from the pending order
func (c *Cart) Remove(dishID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.draft, dishID)
}

// Lines returns the pending order lines sorted by dish id
func (c *Cart) Lines() []models.OrderLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines()
}

func (c *Cart) lines() []models.OrderLine {
	out := make([]models.OrderLine, 0, len(c.draft))
	for _, l := range c.draft {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DishID < out[j].DishID })
	return out
}

func (c *Cart) Total() decimal.Decimal {
	return models.LinesTotal(c.Lines())
}

// Count is the number of items in the pending order
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.draft {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = map[uint]int{}
	c.draft = map[uint]models.OrderLine{}
}

// Checkout is the optional delivery detail of a submitted order
type Checkout struct {
	Address string
	Notes   string
}

// Submit turns the pending order into a server order. The cart is emptied
// only when the backend accepted it.
func (c *Cart) Submit(ctx context.Context, placer OrderPlacer, clientID uint, co Checkout) (*models.Order, error) {
	if clientID == 0 {
		return nil, ErrNoClient
	}
	lines := c.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := models.Order{
		ClientID:    clientID,
		Status:      models.StatusPending,
		TotalAmount: models.LinesTotal(lines),
		Address:     co.Address,
		Notes:       co.Notes,
		OrderDate:   time.Now(),
		Lines:       lines,
	}
	placed, err := placer.PlaceOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	c.Clear()
	return placed, nil
}
