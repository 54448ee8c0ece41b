package routes

import (
	"net/http"

	"github.com/01moynul/storefront-fulfillment/internal/handlers"
	"github.com/01moynul/storefront-fulfillment/internal/middleware"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/gin-gonic/gin"
)

// Options are the router settings that do not belong to a handler.
type Options struct {
	CORSOrigin string
	// UploadDir is served under /uploads when set.
	UploadDir string
}

var (
	managerRoles = []models.Role{models.RoleAdmin, models.RoleManager}
	staffRoles   = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleSupport}
)

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	handlers.RegisterValidators()

	router := gin.New()

	// --- Global middleware; CORS must come before anything that can abort ---
	router.Use(middleware.CORSMiddleware(opts.CORSOrigin))
	router.Use(middleware.RequestLogger(h.Logger))
	router.Use(middleware.Recovery(h.Logger))

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/logout", h.Logout)
		v1.GET("/auth/demo-users", h.DemoUsers)

		// --- Public Catalog Routes ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/categories", h.ListCategories)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/reviews/public", h.GetPublicReviews)

		authRequired := middleware.AuthMiddleware(h.Tokens, h.Cookie.Name)

		// --- Customer Routes (Login Required) ---
		customer := v1.Group("/customer")
		customer.Use(authRequired)
		{
			customer.GET("/orders", h.GetMyOrders)
			customer.GET("/orders/transaction/:transaction_id", h.GetOrderByTransaction)

			customer.GET("/cart", h.GetCart)
			customer.POST("/cart/items", h.AddToCart)
			customer.PUT("/cart/items/:product_id", h.UpdateCartItem)
			customer.DELETE("/cart/items/:product_id", h.DeleteCartItem)
			customer.POST("/cart/checkout", h.Checkout)

			customer.POST("/reviews", h.CreateProductReview)
			customer.POST("/reviews/experience", h.CreateExperienceReview)
			customer.GET("/reviews", h.GetMyReviews)

			customer.POST("/tickets", h.CreateTicket)
			customer.GET("/tickets", h.GetMyTickets)
		}

		// --- Manager Routes ---
		// Every group checks the role before a handler runs, so an unauthorized
		// caller gets a 403 and never an empty list.
		manager := v1.Group("/manager")
		manager.Use(authRequired)
		{
			orders := manager.Group("/orders", middleware.RequireRoles(managerRoles...))
			orders.GET("/pending", h.GetPendingOrders)
			orders.GET("/all", h.GetAllOrders)
			orders.POST("/process", h.ProcessOrder)

			inventory := manager.Group("/inventory", middleware.RequireRoles(managerRoles...))
			inventory.GET("", h.GetInventory)
			inventory.GET("/:product_id", h.GetProductInventory)

			reviews := manager.Group("/reviews", middleware.RequireRoles(managerRoles...))
			reviews.GET("", h.GetAllReviews)
			reviews.PATCH("/:id/moderate", h.ModerateReview)

			tickets := manager.Group("/tickets", middleware.RequireRoles(staffRoles...))
			tickets.GET("", h.GetAllTickets)
			tickets.GET("/:id", h.GetTicket)
			tickets.POST("/:id/update", h.UpdateTicket)

			manager.GET("/badges", middleware.RequireRoles(staffRoles...), h.GetBadges)
		}
	}

	return router
}
