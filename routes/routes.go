package routes

import (
	"restaurant-dashboard/handlers"
	"restaurant-dashboard/middleware"
	"restaurant-dashboard/models"
	"restaurant-dashboard/session"
	"restaurant-dashboard/views"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, sessions *session.Manager) {
	r.Use(middleware.LoadSession(sessions, h.Workspaces.Drop))

	// ── Public routes ──────────────────────────────────────────────
	r.GET("/", h.Home)
	r.GET("/health", h.Health)
	r.GET("/state-machine", h.StateMachineInfo)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.POST("/logout", h.Logout)

	r.GET("/menu", h.Menu)
	r.GET("/menu/categories", h.CategorySummary)
	r.POST("/menu/search-by-image", h.SearchByImage)

	// ── Any signed-in role ─────────────────────────────────────────
	signed := r.Group("/profile")
	signed.Use(middleware.SignedIn())
	{
		signed.GET("", h.GetProfile)
		signed.PUT("", h.UpdateProfile)
	}

	// ── Client routes ──────────────────────────────────────────────
	client := r.Group("")
	client.Use(middleware.RoleRequired(models.RoleClient))
	{
		client.GET("/cart", h.GetCart)
		client.POST("/cart/checkout", h.Checkout)
		client.POST("/cart/:dishId/increment", h.Increment)
		client.POST("/cart/:dishId/decrement", h.Decrement)
		client.POST("/cart/:dishId/add", h.AddToCart)
		client.DELETE("/cart/:dishId", h.RemoveFromCart)

		client.GET("/orders", h.MyOrders)
		client.POST("/orders/:id/cancel", h.CancelOrder)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/admin")
	admin.Use(middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("", h.Dashboard)
		admin.GET("/dashboard/stream", h.DashboardStream)
		admin.POST("/dashboard/refresh", h.RefreshDashboard)

		registerResource(admin.Group("/categories"), h.Categories(), false)
		registerResource(admin.Group("/dishes"), h.Dishes(), false)
		admin.GET("/clients/stats", h.ClientsOverview)
		registerResource(admin.Group("/clients"), h.Clients(), true)
		registerResource(admin.Group("/users"), h.Users(), true)

		admin.GET("/orders", h.Orders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.POST("/orders/notice/dismiss", h.DismissOrderNotice)
	}

	// ── Chef routes ────────────────────────────────────────────────
	chef := r.Group("/chef")
	chef.Use(middleware.RoleRequired(models.RoleChef))
	{
		chef.GET("/orders", h.Orders)
		chef.PUT("/orders/:id/status", h.UpdateOrderStatus)
		chef.POST("/orders/notice/dismiss", h.DismissOrderNotice)
	}

	// ── Driver routes ──────────────────────────────────────────────
	driver := r.Group("/driver")
	driver.Use(middleware.RoleRequired(models.RoleDriver))
	{
		driver.GET("/orders", h.Orders)
		driver.PUT("/orders/:id/status", h.UpdateOrderStatus)
		driver.POST("/orders/notice/dismiss", h.DismissOrderNotice)
	}
}

func registerResource[T views.Entity](g *gin.RouterGroup, rh *handlers.ResourceHandlers[T], activatable bool) {
	g.GET("", rh.List)
	g.POST("", rh.Create)
	g.POST("/delete/confirm", rh.ConfirmDelete)
	g.POST("/delete/cancel", rh.CancelDelete)
	g.POST("/notice/dismiss", rh.Dismiss)
	g.PUT("/:id", rh.Save)
	g.POST("/:id/edit", rh.Edit)
	g.POST("/:id/cancel", rh.Cancel)
	g.POST("/:id/delete", rh.RequestDelete)
	if activatable {
		g.POST("/:id/toggle-active", rh.ToggleActive)
	}
}
