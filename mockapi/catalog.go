package mockapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"restaurant-dashboard/models"
	"restaurant-dashboard/views"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Categories ──────────────────────────────────────────────────────────────

func (s *Server) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) GetCategory(c *gin.Context) {
	var category models.Category
	if !s.findOr404(c, &category, "Category not found") {
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) CreateCategory(c *gin.Context) {
	var category models.Category
	if !bindEntity(c, &category) {
		return
	}
	category.ID = 0
	category.Dishes = nil
	if err := s.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) UpdateCategory(c *gin.Context) {
	var category models.Category
	if !s.findOr404(c, &category, "Category not found") {
		return
	}
	id := category.ID
	if !bindEntity(c, &category) {
		return
	}
	category.ID = id
	category.Dishes = nil
	if err := s.db.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory refuses to orphan dishes
func (s *Server) DeleteCategory(c *gin.Context) {
	var category models.Category
	if !s.findOr404(c, &category, "Category not found") {
		return
	}
	var dishes int64
	s.db.Model(&models.Dish{}).Where("category_id = ?", category.ID).Count(&dishes)
	if dishes > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has dishes; move or delete them first"})
		return
	}
	if err := s.db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// ── Dishes ──────────────────────────────────────────────────────────────────

func (s *Server) ListDishes(c *gin.Context) {
	var dishes []models.Dish
	query := s.db.Order("name")
	if cat := c.Query("category"); cat != "" {
		query = query.Where("category_id = ?", cat)
	}
	if err := query.Find(&dishes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list dishes"})
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func (s *Server) GetDish(c *gin.Context) {
	var dish models.Dish
	if !s.findOr404(c, &dish, "Dish not found") {
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (s *Server) CreateDish(c *gin.Context) {
	var dish models.Dish
	if !s.bindDish(c, &dish) {
		return
	}
	dish.ID = 0
	if err := s.db.Create(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dish"})
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (s *Server) UpdateDish(c *gin.Context) {
	var dish models.Dish
	if !s.findOr404(c, &dish, "Dish not found") {
		return
	}
	id, previous := dish.ID, dish.Image
	if !s.bindDish(c, &dish) {
		return
	}
	dish.ID = id
	if dish.Image != previous {
		removeUpload(s.uploadDir, previous)
	}
	if err := s.db.Save(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dish"})
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (s *Server) DeleteDish(c *gin.Context) {
	var dish models.Dish
	if !s.findOr404(c, &dish, "Dish not found") {
		return
	}
	if err := s.db.Delete(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete dish"})
		return
	}
	removeUpload(s.uploadDir, dish.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Dish deleted"})
}

// CategorySummary lists every category with its dish count
func (s *Server) CategorySummary(c *gin.Context) {
	var out []models.CategorySummary
	err := s.db.Model(&models.Category{}).
		Select("categories.id, categories.name, categories.icon, COUNT(dishes.id) AS item_count").
		Joins("LEFT JOIN dishes ON dishes.category_id = categories.id").
		Group("categories.id, categories.name, categories.icon").
		Order("categories.name").
		Scan(&out).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize categories"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// SearchByImage stands in for the image classifier: the category whose name
// appears in the uploaded file name wins.
func (s *Server) SearchByImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required"})
		return
	}

	var categories []models.Category
	s.db.Find(&categories)
	name := strings.ToLower(fh.Filename)

	res := models.ImageSearchResult{Dishes: []models.Dish{}}
	for i := range categories {
		if strings.Contains(name, strings.ToLower(categories[i].Name)) {
			res.Category = &categories[i]
			res.Confidence = 0.9
			break
		}
	}
	if res.Category != nil {
		s.db.Where("category_id = ?", res.Category.ID).Order("name").Find(&res.Dishes)
	}
	c.JSON(http.StatusOK, res)
}

// bindDish reads a dish from JSON or from a multipart form carrying the
// JSON in "data" and the picture in "image".
func (s *Server) bindDish(c *gin.Context, dish *models.Dish) bool {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return bindEntity(c, dish)
	}
	if err := json.Unmarshal([]byte(c.PostForm("data")), dish); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dish data: " + err.Error()})
		return false
	}
	if !validateEntity(c, dish) {
		return false
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if s.uploadDir == "" {
		dish.Image = fh.Filename
		return true
	}
	stored := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, filepath.Join(s.uploadDir, stored)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return false
	}
	dish.Image = "/uploads/" + stored
	return true
}

func bindEntity(c *gin.Context, into interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(into); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return validateEntity(c, into)
}

// validateEntity applies the same field rules the dashboard checks before
// sending
func validateEntity(c *gin.Context, v interface{}) bool {
	err := views.Validate(v)
	if err == nil {
		return true
	}
	var verr *views.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

func (s *Server) findOr404(c *gin.Context, into interface{}, msg string) bool {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return false
	}
	err = s.db.First(into, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
		return false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func removeUpload(dir, image string) {
	if dir == "" || !strings.HasPrefix(image, "/uploads/") {
		return
	}
	_ = os.Remove(filepath.Join(dir, strings.TrimPrefix(image, "/uploads/")))
}
