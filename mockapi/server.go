// Package mockapi is a development stand-in for the restaurant REST backend.
// It serves the same routes and payloads on top of gorm so the dashboard
// can run end to end on a laptop.
package mockapi

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"restaurant-dashboard/middleware"
	"restaurant-dashboard/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Models lists every table the backend migrates
var Models = []interface{}{
	&models.User{},
	&models.Client{},
	&models.Category{},
	&models.Dish{},
	&models.Order{},
	&models.OrderLine{},
	&models.OrderStatusHistory{},
}

type Server struct {
	db        *gorm.DB
	secret    []byte
	uploadDir string
	tokenTTL  time.Duration
	now       func() time.Time
}

type Options struct {
	Secret    string
	UploadDir string // dish images are written here when set
	TokenTTL  time.Duration
}

func NewServer(db *gorm.DB, opts Options) *Server {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		db:        db,
		secret:    []byte(opts.Secret),
		uploadDir: opts.UploadDir,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// Seed creates the first admin account when no admin exists yet
func (s *Server) Seed(email, password string) error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("🌱 Seeded admin account %s", email)
	return nil
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())
	s.SetupRoutes(r)
	return r
}

func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Restaurant API (mock)"})
	})
	if s.uploadDir != "" {
		if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
			log.Printf("⚠️  upload dir %s: %v", s.uploadDir, err)
		}
		r.Static("/uploads", s.uploadDir)
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/login", s.Login)
		public.POST("/auth/register", s.Register)

		public.GET("/categories", s.ListCategories)
		public.GET("/categories/:id", s.GetCategory)
		public.GET("/dishes", s.ListDishes)
		public.GET("/dishes/categories", s.CategorySummary)
		public.POST("/dishes/search-by-image", s.SearchByImage)
		public.GET("/dishes/:id", s.GetDish)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(s.AuthRequired())
	{
		auth.GET("/profile", s.GetProfile)
		auth.PUT("/profile", s.UpdateProfile)
		auth.GET("/orders/mine", RoleRequired(models.RoleClient), s.MyOrders)
		auth.POST("/orders", RoleRequired(models.RoleClient, models.RoleAdmin), s.PlaceOrder)
		auth.GET("/orders", RoleRequired(models.RoleAdmin, models.RoleChef, models.RoleDriver), s.StaffOrders)
		auth.PUT("/orders/:id", s.UpdateOrderStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(s.AuthRequired(), RoleRequired(models.RoleAdmin))
	{
		admin.POST("/categories", s.CreateCategory)
		admin.PUT("/categories/:id", s.UpdateCategory)
		admin.DELETE("/categories/:id", s.DeleteCategory)

		admin.POST("/dishes", s.CreateDish)
		admin.PUT("/dishes/:id", s.UpdateDish)
		admin.DELETE("/dishes/:id", s.DeleteDish)

		admin.GET("/clients", s.ListClients)
		admin.GET("/clients/stats", s.ClientsOverview)
		admin.POST("/clients", s.CreateClient)
		admin.GET("/clients/:id", s.GetClient)
		admin.GET("/clients/:id/stats", s.ClientStats)
		admin.PUT("/clients/:id", s.UpdateClient)
		admin.DELETE("/clients/:id", s.DeactivateClient)
		admin.POST("/clients/:id/activate", s.ActivateClient)
		admin.DELETE("/clients/:id/permanent", s.DeleteClient)

		admin.GET("/users", s.ListUsers)
		admin.POST("/users", s.CreateUser)
		admin.GET("/users/:id", s.GetUser)
		admin.PUT("/users/:id", s.UpdateUser)
		admin.DELETE("/users/:id", s.DeactivateUser)
		admin.POST("/users/:id/activate", s.ActivateUser)
		admin.DELETE("/users/:id/permanent", s.DeleteUser)

		admin.GET("/orders/admin/all", s.AllOrders)
	}
}
