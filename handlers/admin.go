package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard renders the latest aggregated figures. ?refresh=1 asks the
// poller for a fetch right away; the answer still carries the current
// figures.
func (h *Handler) Dashboard(c *gin.Context) {
	ws := h.workspace(c)
	if ws.Dashboard == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Dashboard is only available to admins"})
		return
	}
	if c.Query("refresh") != "" {
		ws.Dashboard.Refresh()
	}

	body := gin.H{"dashboard": ws.Dashboard.Snapshot()}
	overview, err := ws.API.ClientsOverview(c.Request.Context())
	if err == nil {
		body["clients"] = overview
	}
	c.JSON(http.StatusOK, body)
}

// DashboardStream pushes every new dashboard snapshot as a server-sent
// event until the browser goes away.
func (h *Handler) DashboardStream(c *gin.Context) {
	ws := h.workspace(c)
	if ws.Dashboard == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Dashboard is only available to admins"})
		return
	}
	updates, unsubscribe := ws.Dashboard.Subscribe()
	defer unsubscribe()

	c.SSEvent("stats", ws.Dashboard.Snapshot())
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snap := <-updates:
			c.SSEvent("stats", snap)
			return true
		}
	})
}

// RefreshDashboard queues a manual refresh
func (h *Handler) RefreshDashboard(c *gin.Context) {
	ws := h.workspace(c)
	if ws.Dashboard == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Dashboard is only available to admins"})
		return
	}
	ws.Dashboard.Refresh()
	c.JSON(http.StatusAccepted, gin.H{"message": "Refresh queued", "dashboard": ws.Dashboard.Snapshot()})
}

// ClientsOverview returns the client counters shown above the clients list
func (h *Handler) ClientsOverview(c *gin.Context) {
	overview, err := h.workspace(c).API.ClientsOverview(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, overview)
}
