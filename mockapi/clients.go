package mockapi

import (
	"net/http"
	"time"

	"restaurant-dashboard/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type clientTotals struct {
	ClientID    uint
	OrderCount  int
	TotalSpent  decimal.Decimal
	LastOrderAt string
}

// totals sums orders per client; cancelled orders count but spend nothing
func (s *Server) totals(clientIDs ...uint) (map[uint]clientTotals, error) {
	var rows []clientTotals
	query := s.db.Model(&models.Order{}).
		Select("client_id, COUNT(*) AS order_count, " +
			"COALESCE(SUM(CASE WHEN status <> ? THEN total_amount ELSE 0 END), 0) AS total_spent, " +
			"MAX(order_date) AS last_order_at", models.StatusCancelled).
		Group("client_id")
	if len(clientIDs) > 0 {
		query = query.Where("client_id IN ?", clientIDs)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]clientTotals, len(rows))
	for _, r := range rows {
		out[r.ClientID] = r
	}
	return out, nil
}

func (s *Server) ListClients(c *gin.Context) {
	var clients []models.Client
	if err := s.db.Order("last_name, first_name").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clients"})
		return
	}
	totals, err := s.totals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}
	for i := range clients {
		t := totals[clients[i].ID]
		clients[i].OrderCount = t.OrderCount
		clients[i].TotalSpent = t.TotalSpent
	}
	c.JSON(http.StatusOK, clients)
}

func (s *Server) GetClient(c *gin.Context) {
	var client models.Client
	if !s.findOr404(c, &client, "Client not found") {
		return
	}
	c.JSON(http.StatusOK, client)
}

func (s *Server) CreateClient(c *gin.Context) {
	var client models.Client
	if !bindEntity(c, &client) {
		return
	}
	client.ID = 0
	client.Active = true
	if err := s.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (s *Server) UpdateClient(c *gin.Context) {
	var client models.Client
	if !s.findOr404(c, &client, "Client not found") {
		return
	}
	id, userID, active := client.ID, client.UserID, client.Active
	if !bindEntity(c, &client) {
		return
	}
	// activation has its own endpoints
	client.ID, client.UserID, client.Active = id, userID, active
	if err := s.db.Save(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeactivateClient is the soft delete: the client is blocked, never removed
func (s *Server) DeactivateClient(c *gin.Context) {
	s.setClientActive(c, false)
}

func (s *Server) ActivateClient(c *gin.Context) {
	s.setClientActive(c, true)
}

func (s *Server) setClientActive(c *gin.Context, active bool) {
	var client models.Client
	if !s.findOr404(c, &client, "Client not found") {
		return
	}
	if err := s.db.Model(&client).Update("active", active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}
	if client.UserID != nil {
		s.db.Model(&models.User{}).Where("id = ?", *client.UserID).Update("active", active)
	}
	msg := "Client blocked"
	if active {
		msg = "Client unblocked"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "client": client})
}

// DeleteClient removes a client for good, refused while orders reference it
func (s *Server) DeleteClient(c *gin.Context) {
	var client models.Client
	if !s.findOr404(c, &client, "Client not found") {
		return
	}
	var orders int64
	s.db.Model(&models.Order{}).Where("client_id = ?", client.ID).Count(&orders)
	if orders > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Client has orders; block the account instead"})
		return
	}
	if err := s.db.Delete(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted"})
}

func (s *Server) ClientStats(c *gin.Context) {
	var client models.Client
	if !s.findOr404(c, &client, "Client not found") {
		return
	}
	totals, err := s.totals(client.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}
	t := totals[client.ID]
	stats := models.ClientStats{
		ClientID:   client.ID,
		OrderCount: t.OrderCount,
		TotalSpent: t.TotalSpent,
	}
	if last, ok := parseDBTime(t.LastOrderAt); ok {
		stats.LastOrderAt = &last
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) ClientsOverview(c *gin.Context) {
	var total, active int64
	s.db.Model(&models.Client{}).Count(&total)
	s.db.Model(&models.Client{}).Where("active = ?", true).Count(&active)
	c.JSON(http.StatusOK, models.ClientsOverview{
		Total:   int(total),
		Active:  int(active),
		Blocked: int(total - active),
	})
}

// parseDBTime reads an aggregated timestamp, which drivers hand back as text
func parseDBTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
