package handlers

import (
	"log"
	"net/http"

	"restaurant-dashboard/cart"
	"restaurant-dashboard/middleware"
	"restaurant-dashboard/models"

	"github.com/gin-gonic/gin"
)

type CheckoutRequest struct {
	Address string `form:"address" json:"address"`
	Notes   string `form:"notes" json:"notes"`
}

func renderCart(c *gin.Context, status int, cr *cart.Cart, notice string) {
	body := gin.H{
		"lines":    cr.Lines(),
		"total":    cr.Total(),
		"count":    cr.Count(),
		"selected": cr.Selection(),
	}
	if cr.Count() == 0 {
		body["placeholder"] = "Your cart is empty"
	}
	if notice != "" {
		body["message"] = notice
	}
	c.JSON(status, body)
}

func (h *Handler) GetCart(c *gin.Context) {
	renderCart(c, http.StatusOK, h.workspace(c).Cart, "")
}

// Increment bumps the picker of a dish on the menu
func (h *Handler) Increment(c *gin.Context) {
	id, ok := idParam(c, "dishId")
	if !ok {
		return
	}
	qty := h.workspace(c).Cart.Increment(id)
	c.JSON(http.StatusOK, gin.H{"dishId": id, "quantity": qty})
}

func (h *Handler) Decrement(c *gin.Context) {
	id, ok := idParam(c, "dishId")
	if !ok {
		return
	}
	qty := h.workspace(c).Cart.Decrement(id)
	c.JSON(http.StatusOK, gin.H{"dishId": id, "quantity": qty})
}

// AddToCart moves the picked quantity of a dish into the pending order,
// at the dish's current price.
func (h *Handler) AddToCart(c *gin.Context) {
	id, ok := idParam(c, "dishId")
	if !ok {
		return
	}
	ws := h.workspace(c)
	if ws.Cart.Selected(id) == 0 {
		respondError(c, cart.ErrEmptySelection, nil)
		return
	}
	dish, err := h.Public.Dishes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	line, err := ws.Cart.AddToCart(dish)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	renderCart(c, http.StatusOK, ws.Cart, line.Name+" added to your cart")
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, ok := idParam(c, "dishId")
	if !ok {
		return
	}
	ws := h.workspace(c)
	ws.Cart.Remove(id)
	renderCart(c, http.StatusOK, ws.Cart, "")
}

// Checkout submits the pending order for the signed-in client
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := h.workspace(c)
	var clientID uint
	if user := middleware.GetUser(c); user.ClientID != nil {
		clientID = *user.ClientID
	}
	order, err := ws.Cart.Submit(c.Request.Context(), ws.API, clientID, cart.Checkout{
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(c, err, gin.H{"lines": ws.Cart.Lines(), "total": ws.Cart.Total()})
		return
	}
	log.Printf("🧾 order #%d placed by client %d (%s)", order.ID, clientID, order.TotalAmount.StringFixed(2))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// MyOrders lists the client's orders with the statuses they can still pick
func (h *Handler) MyOrders(c *gin.Context) {
	ws := h.workspace(c)
	if err := ws.Board.Fetch(c.Request.Context()); err != nil {
		respondError(c, err, ws.Board.Snapshot())
		return
	}
	snap := ws.Board.Snapshot()
	body := gin.H{"count": len(snap.Rows), "orders": snap.Rows}
	if len(snap.Rows) == 0 {
		body["placeholder"] = "You have not ordered yet"
	}
	c.JSON(http.StatusOK, body)
}

// CancelOrder lets a client withdraw an order the kitchen has not taken
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ws := h.workspace(c)
	if len(ws.Board.Orders()) == 0 {
		if err := ws.Board.Fetch(c.Request.Context()); err != nil {
			respondError(c, err, nil)
			return
		}
	}
	order, err := ws.Board.ChangeStatus(c.Request.Context(), id, models.StatusCancelled, false, "Order cancelled by client")
	if err != nil {
		respondError(c, err, ws.Board.Snapshot())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "order": order})
}
