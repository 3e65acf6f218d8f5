// Package workspace holds everything a signed-in browser session keeps in
// memory between requests: its list views, its cart, its order board and,
// for admins, the dashboard poller.
package workspace

import (
	"context"
	"sync"
	"time"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/cart"
	"restaurant-dashboard/dashboard"
	"restaurant-dashboard/models"
	"restaurant-dashboard/orders"
	"restaurant-dashboard/session"
	"restaurant-dashboard/views"
)

type Settings struct {
	PollInterval     time.Duration
	StatsConcurrency int
}

type Workspace struct {
	API        *apiclient.API
	Role       models.UserRole
	Categories *views.ListView[models.Category]
	Dishes     *views.ListView[models.Dish]
	Clients    *views.ListView[models.Client]
	Users      *views.ListView[models.User]
	Cart       *cart.Cart
	Board      *orders.Board
	Dashboard  *dashboard.Poller

	expires time.Time
}

func build(ctx context.Context, base *apiclient.Client, sess *session.Session, st Settings) *Workspace {
	api := apiclient.NewAPI(base.WithToken(sess.Token))
	role := sess.User.Role
	loader := dashboard.NewClientStatsLoader(api, st.StatsConcurrency)

	ws := &Workspace{
		API:  api,
		Role: role,
		Categories: views.NewListView[models.Category](api.Categories, views.Options[models.Category]{
			Name: "categories", Placeholder: "No categories yet",
		}),
		Dishes: views.NewListView[models.Dish](api.Dishes, views.Options[models.Dish]{
			Name: "dishes", Placeholder: "No dishes on the menu",
		}),
		Clients: views.NewListView[models.Client](api.Clients, views.Options[models.Client]{
			Name:        "clients",
			Placeholder: "No clients yet",
			DeleteGuard: views.BlockDependents[models.Client],
			Enrich:      loader.Enrich,
		}),
		Users: views.NewListView[models.User](api.Users, views.Options[models.User]{
			Name:        "users",
			Placeholder: "No users yet",
			DeleteGuard: views.BlockDependents[models.User],
		}),
		Cart:    cart.New(),
		Board:   orders.NewBoard(role, boardSource(api, role), api),
		expires: sess.ExpiresAt,
	}

	if role == models.RoleAdmin {
		ws.Dashboard = dashboard.NewPoller(api.AllOrders, st.PollInterval)
		ws.Dashboard.Start(ctx)
	}
	return ws
}

// boardSource picks which orders a role's board shows
func boardSource(api *apiclient.API, role models.UserRole) orders.FetchFunc {
	switch role {
	case models.RoleAdmin:
		return api.AllOrders
	case models.RoleChef:
		return func(ctx context.Context) ([]models.Order, error) {
			return api.StaffOrders(ctx, models.StatusPending, models.StatusPreparing, models.StatusReady)
		}
	case models.RoleDriver:
		return func(ctx context.Context) ([]models.Order, error) {
			return api.StaffOrders(ctx, models.StatusReady, models.StatusShipping)
		}
	}
	return api.MyOrders
}

func (w *Workspace) Close() {
	if w.Dashboard != nil {
		w.Dashboard.Stop()
	}
	w.Cart.Clear()
}

// Registry maps session ids to their workspace
type Registry struct {
	ctx      context.Context
	base     *apiclient.Client
	settings Settings

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(ctx context.Context, base *apiclient.Client, settings Settings) *Registry {
	return &Registry{ctx: ctx, base: base, settings: settings, items: map[string]*Workspace{}}
}

// For returns the workspace of a session, creating it on first use
func (r *Registry) For(sess *session.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.items[sess.ID]; ok {
		return ws
	}
	ws := build(r.ctx, r.base, sess, r.settings)
	r.items[sess.ID] = ws
	return ws
}

// Drop closes and forgets a session's workspace
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	ws, ok := r.items[sessionID]
	delete(r.items, sessionID)
	r.mu.Unlock()
	if ok {
		ws.Close()
	}
}

// Sweep drops the workspaces of sessions expired at now. Sessions can
// lapse without another request reaching LoadSession, so this runs on a
// timer too.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var stale []*Workspace
	for id, ws := range r.items {
		if !ws.expires.IsZero() && !now.Before(ws.expires) {
			stale = append(stale, ws)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()
	for _, ws := range stale {
		ws.Close()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = map[string]*Workspace{}
	r.mu.Unlock()
	for _, ws := range items {
		ws.Close()
	}
}
