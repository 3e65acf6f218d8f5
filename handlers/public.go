package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"restaurant-dashboard/middleware"
	"restaurant-dashboard/models"
	"restaurant-dashboard/session"
	"restaurant-dashboard/statemachine"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

// Home points each caller at the part of the app their role opens
func (h *Handler) Home(c *gin.Context) {
	home := "/menu"
	var role models.UserRole
	if user := middleware.GetUser(c); user != nil {
		role = user.Role
		home = user.Role.HomePath()
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "🍽️ Welcome to the restaurant dashboard",
		"role":    role,
		"home":    home,
		"roles":   []models.UserRole{models.RoleAdmin, models.RoleChef, models.RoleDriver, models.RoleClient},
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Restaurant Dashboard",
		"version": "1.0.0",
	})
}

// Menu lists the dishes, optionally narrowed to one category. Signed-in
// clients also see how many of each dish they have picked.
func (h *Handler) Menu(c *gin.Context) {
	ctx := c.Request.Context()
	dishes, err := h.Public.Dishes.List(ctx)
	if err != nil {
		respondError(c, err, gin.H{"dishes": []models.Dish{}})
		return
	}
	categories, err := h.Public.CategorySummary(ctx)
	if err != nil {
		respondError(c, err, gin.H{"dishes": dishes})
		return
	}

	if raw := c.Query("category"); raw != "" {
		catID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		kept := dishes[:0]
		for _, d := range dishes {
			if d.CategoryID == uint(catID) {
				kept = append(kept, d)
			}
		}
		dishes = kept
	}

	body := gin.H{
		"count":      len(dishes),
		"dishes":     dishes,
		"categories": categories,
	}
	if len(dishes) == 0 {
		body["placeholder"] = "No dishes match this category"
	}
	if session.IsAllowed(middleware.GetUser(c), models.RoleClient) {
		ws := h.workspace(c)
		body["selected"] = ws.Cart.Selection()
		body["cartCount"] = ws.Cart.Count()
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) CategorySummary(c *gin.Context) {
	categories, err := h.Public.CategorySummary(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

// SearchByImage forwards an uploaded dish photo to the backend classifier
func (h *Handler) SearchByImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}
	if fh.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image must be 5 MB or smaller"})
		return
	}
	upload, err := readUpload(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the image"})
		return
	}

	res, err := h.Public.SearchDishesByImage(c.Request.Context(), *upload)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// StateMachineInfo documents the order lifecycle
func (h *Handler) StateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"statuses":    models.AllStatuses,
		"transitions": statemachine.GetAllTransitions(),
		"terminal":    []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
	})
}

func readUpload(fh *multipart.FileHeader) (*models.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxImageSize))
	if err != nil {
		return nil, err
	}
	return &models.Upload{Filename: fh.Filename, Content: content}, nil
}
