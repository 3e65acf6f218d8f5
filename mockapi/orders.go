package mockapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"restaurant-dashboard/models"
	"restaurant-dashboard/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PlaceOrderRequest struct {
	ClientID uint   `json:"clientId"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	Lines    []struct {
		DishID   uint `json:"dishId" binding:"required"`
		Quantity int  `json:"quantity" binding:"required,min=1"`
	} `json:"lines" binding:"required,min=1,dive"`
}

// PlaceOrder creates an order. Prices and the total are taken from the
// current menu, never from the request.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clientID, ok := s.orderingClient(c, req.ClientID)
	if !ok {
		return
	}

	lines := make([]models.OrderLine, 0, len(req.Lines))
	for _, reqLine := range req.Lines {
		var dish models.Dish
		if err := s.db.First(&dish, reqLine.DishID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Dish not found: %d", reqLine.DishID)})
			return
		}
		lines = append(lines, models.OrderLine{
			DishID:    dish.ID,
			Name:      dish.Name,
			Quantity:  reqLine.Quantity,
			UnitPrice: dish.Price,
		})
	}

	order := models.Order{
		ClientID:    clientID,
		Status:      models.StatusPending,
		TotalAmount: models.LinesTotal(lines),
		Address:     req.Address,
		Notes:       req.Notes,
		OrderDate:   s.now(),
		Lines:       lines,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: getUserID(c),
			Note:      "Order placed",
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}
	c.JSON(http.StatusCreated, order)
}

// orderingClient resolves whose order this is: a client orders for itself,
// an admin names the client.
func (s *Server) orderingClient(c *gin.Context, requested uint) (uint, bool) {
	if getRole(c) == models.RoleAdmin {
		var client models.Client
		if requested == 0 || s.db.First(&client, requested).Error != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A valid clientId is required"})
			return 0, false
		}
		return client.ID, true
	}

	var client models.Client
	if err := s.db.Where("user_id = ?", getUserID(c)).First(&client).Error; err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "No client record for this account"})
		return 0, false
	}
	if !client.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "This account is blocked"})
		return 0, false
	}
	return client.ID, true
}

func (s *Server) listOrders(c *gin.Context, query *gorm.DB) {
	var orders []models.Order
	if err := query.Preload("Lines").Order("order_date desc").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// AllOrders returns every order, for admins
func (s *Server) AllOrders(c *gin.Context) {
	s.listOrders(c, s.db)
}

// StaffOrders lists orders filtered by one or more ?status= values
func (s *Server) StaffOrders(c *gin.Context) {
	query := s.db
	if statuses := c.QueryArray("status"); len(statuses) > 0 {
		for _, st := range statuses {
			if !models.OrderStatus(st).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status " + st})
				return
			}
		}
		query = query.Where("status IN ?", statuses)
	}
	s.listOrders(c, query)
}

// MyOrders returns the orders of the caller's client record
func (s *Server) MyOrders(c *gin.Context) {
	var client models.Client
	if err := s.db.Where("user_id = ?", getUserID(c)).First(&client).Error; err != nil {
		c.JSON(http.StatusOK, []models.Order{})
		return
	}
	s.listOrders(c, s.db.Where("client_id = ?", client.ID))
}

type UpdateOrderStatusRequest struct {
	Status   models.OrderStatus `json:"status" binding:"required"`
	Override bool               `json:"override"`
	Note     string             `json:"note"`
}

// UpdateOrderStatus applies a lifecycle move on behalf of the caller's role.
// Admins may override the lifecycle; every change is recorded.
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := s.db.Preload("Lines").First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	actor := getRole(c)
	if actor == models.RoleClient && !s.ownsOrder(c, order) {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	if req.Override {
		err = statemachine.Override(order.Status, req.Status, actor)
	} else {
		err = statemachine.CanTransition(order.Status, req.Status, actor)
	}
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, statemachine.ErrOverrideDenied) {
			status = http.StatusForbidden
		}
		c.JSON(status, gin.H{
			"error":             err.Error(),
			"current_status":    order.Status,
			"requested":         req.Status,
			"valid_next_states": statemachine.ValidNext(order.Status, actor),
		})
		return
	}

	prevStatus := order.Status
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prevStatus,
			ToStatus:   req.Status,
			ChangedBy:  getUserID(c),
			Note:       req.Note,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	if req.Override {
		log.Printf("⚠️ order %d forced %s → %s by user %d: %s", order.ID, prevStatus, req.Status, getUserID(c), req.Note)
	}
	var updated models.Order
	if err := s.db.Preload("Lines").First(&updated, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload order"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) ownsOrder(c *gin.Context, order models.Order) bool {
	var client models.Client
	if err := s.db.Where("user_id = ?", getUserID(c)).First(&client).Error; err != nil {
		return false
	}
	return client.ID == order.ClientID
}
