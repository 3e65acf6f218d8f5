package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"restaurant-dashboard/apiclient"
	"restaurant-dashboard/cart"
	"restaurant-dashboard/middleware"
	"restaurant-dashboard/orders"
	"restaurant-dashboard/session"
	"restaurant-dashboard/statemachine"
	"restaurant-dashboard/views"
	"restaurant-dashboard/workspace"

	"github.com/gin-gonic/gin"
)

// Handler serves the browser-facing pages. Pages are JSON view models.
type Handler struct {
	Sessions     *session.Manager
	Workspaces   *workspace.Registry
	Public       *apiclient.API
	CookieSecure bool
}

func New(sessions *session.Manager, workspaces *workspace.Registry, public *apiclient.API, cookieSecure bool) *Handler {
	return &Handler{
		Sessions:     sessions,
		Workspaces:   workspaces,
		Public:       public,
		CookieSecure: cookieSecure,
	}
}

// workspace returns the caller's workspace. Routes using it sit behind
// RoleRequired, so a session is always present.
func (h *Handler) workspace(c *gin.Context) *workspace.Workspace {
	return h.Workspaces.For(middleware.GetSession(c))
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError maps an error to a status code and a JSON body. view, when
// non-nil, is the page state to render next to the error.
func respondError(c *gin.Context, err error, view interface{}) {
	if errors.Is(err, context.Canceled) {
		// the browser left; nobody reads this answer
		c.Status(499)
		return
	}

	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var verr *views.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["fields"] = verr.Fields
	case errors.Is(err, views.ErrHasDependents):
		status = http.StatusConflict
	case errors.Is(err, views.ErrUnknownEntity), errors.Is(err, orders.ErrUnknownOrder):
		status = http.StatusNotFound
	case errors.Is(err, views.ErrNoPendingDelete), errors.Is(err, views.ErrNotActivatable):
		status = http.StatusBadRequest
	case errors.Is(err, statemachine.ErrOverrideDenied):
		status = http.StatusForbidden
	case errors.Is(err, statemachine.ErrTerminal), errors.Is(err, statemachine.ErrNoChange),
		errors.Is(err, statemachine.ErrUnknownStatus), errors.Is(err, statemachine.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, cart.ErrEmptySelection), errors.Is(err, cart.ErrEmptyCart), errors.Is(err, cart.ErrNoClient):
		status = http.StatusBadRequest
	default:
		status = apiclient.StatusCode(err)
		body["error"] = apiclient.UserMessage(err)
	}
	if view != nil {
		body["view"] = view
	}
	c.JSON(status, body)
}
