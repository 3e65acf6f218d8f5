package handlers

import (
	"net/http"

	"restaurant-dashboard/models"

	"github.com/gin-gonic/gin"
)

type StatusRequest struct {
	Status   models.OrderStatus `json:"status" binding:"required"`
	Override bool               `json:"override"`
	Note     string             `json:"note"`
}

// Orders renders the caller's order board: everything for admins, the
// kitchen queue for chefs, deliveries for drivers.
func (h *Handler) Orders(c *gin.Context) {
	ws := h.workspace(c)
	if err := ws.Board.Fetch(c.Request.Context()); err != nil {
		respondError(c, err, ws.Board.Snapshot())
		return
	}
	c.JSON(http.StatusOK, ws.Board.Snapshot())
}

// UpdateOrderStatus moves an order along the lifecycle. Only admins may
// set override to force a move the lifecycle would refuse.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Unknown status " + string(req.Status),
			"statuses": models.AllStatuses,
		})
		return
	}

	ws := h.workspace(c)
	if len(ws.Board.Orders()) == 0 {
		if err := ws.Board.Fetch(c.Request.Context()); err != nil {
			respondError(c, err, nil)
			return
		}
	}
	order, err := ws.Board.ChangeStatus(c.Request.Context(), id, req.Status, req.Override, req.Note)
	if err != nil {
		respondError(c, err, ws.Board.Snapshot())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
		"board":   ws.Board.Snapshot(),
	})
}

func (h *Handler) DismissOrderNotice(c *gin.Context) {
	ws := h.workspace(c)
	ws.Board.Dismiss()
	c.JSON(http.StatusOK, ws.Board.Snapshot())
}
