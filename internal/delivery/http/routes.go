package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pawradise/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	{
		// Catalog endpoints
		v1.GET("/products", handler.ListProducts)
		v1.GET("/products/featured", handler.GetFeaturedProducts)
		v1.GET("/products/:id", handler.GetProduct)
		v1.GET("/categories", handler.ListCategories)

		// Session-scoped endpoints
		session := v1.Group("")
		session.Use(SessionMiddleware())

		cart := session.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.DELETE("", handler.ClearCart)
			cart.POST("/items", handler.AddCartItem)
			cart.PATCH("/items/:id", handler.UpdateCartItem)
			cart.DELETE("/items/:id", handler.RemoveCartItem)
			cart.POST("/checkout", handler.Checkout)
		}

		assistant := session.Group("/assistant")
		{
			assistant.GET("/messages", handler.GetMessages)
			assistant.POST("/messages", handler.SendMessage)
			assistant.DELETE("/messages", handler.ResetConversation)
		}
	}

	return router
}
