package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"restaurant-dashboard/models"
)

// API bundles the resource collections and the one-off endpoints behind a
// single client.
type API struct {
	*Client
	Categories *Resource[models.Category]
	Dishes     *Resource[models.Dish]
	Clients    *Resource[models.Client]
	Users      *Resource[models.User]
}

func NewAPI(c *Client) *API {
	return &API{
		Client:     c,
		Categories: NewResource[models.Category](c, "/categories"),
		Dishes:     NewResource[models.Dish](c, "/dishes"),
		Clients:    NewSoftResource[models.Client](c, "/clients"),
		Users:      NewSoftResource[models.User](c, "/users"),
	}
}

// AuthResult is the login/register answer
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", reg, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate is the self-service part of a user record
type ProfileUpdate struct {
	Name  string `form:"name" json:"name" binding:"required"`
	Phone string `form:"phone" json:"phone"`
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/profile", upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CategorySummary lists categories with their dish counts
func (c *Client) CategorySummary(ctx context.Context) ([]models.CategorySummary, error) {
	var out []models.CategorySummary
	if err := c.do(ctx, http.MethodGet, "/dishes/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchDishesByImage uploads a photo and gets back the detected category and
// matching dishes.
func (c *Client) SearchDishesByImage(ctx context.Context, upload models.Upload) (*models.ImageSearchResult, error) {
	var out models.ImageSearchResult
	if err := c.doMultipart(ctx, http.MethodPost, "/dishes/search-by-image", nil, &upload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClientStats(ctx context.Context, clientID uint) (*models.ClientStats, error) {
	var out models.ClientStats
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/clients/%d/stats", clientID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClientsOverview(ctx context.Context) (*models.ClientsOverview, error) {
	var out models.ClientsOverview
	if err := c.do(ctx, http.MethodGet, "/clients/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllOrders is the admin view of every order
func (c *Client) AllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/admin/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaffOrders lists orders in the given statuses, for kitchen and driver boards
func (c *Client) StaffOrders(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	q := url.Values{}
	for _, s := range statuses {
		q.Add("status", string(s))
	}
	path := "/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyOrders lists the signed-in client's orders
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/mine", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PlaceOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", order, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatusChange is the body of PUT /orders/:id
type StatusChange struct {
	Status   models.OrderStatus `json:"status"`
	Override bool               `json:"override,omitempty"`
	Note     string             `json:"note,omitempty"`
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID uint, change StatusChange) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", orderID), change, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
