package handler

import (
	"net/http"

	"homehero/marketplace-service/internal/app/marketplace/entity"
	"homehero/pkg/logger"
	"homehero/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "marketplace-service"

// Handlers собирает обработчики всех групп маршрутов
type Handlers struct {
	User    *UserHandler
	Catalog *CatalogHandler
	Booking *BookingHandler
	System  *SystemHandler
}

// SetupRoutes настраивает все маршруты Home Hero API
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, responder *Responder, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// panic -> 500 в общем формате ошибок
	router.Use(gin.CustomRecovery(responder.Recovery))
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": msgRouteNotFound,
			"path":    c.Request.URL.Path,
		})
	})

	router.GET("/", h.System.Root)
	router.GET("/health", h.System.Health)
	router.GET("/api/test", h.System.APITest)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты
	router.POST("/users", h.User.Register)
	router.GET("/services", h.Catalog.ListServices)
	router.GET("/filter-services", h.Catalog.FilterServices)
	router.GET("/services/home", h.Catalog.HomeServices)
	router.GET("/services/:id", h.Catalog.GetService)
	router.GET("/testimonials", h.Catalog.Testimonials)

	// Требуют проверенный ID токен
	protected := router.Group("")
	protected.Use(authMiddleware.Authenticate())
	{
		protected.GET("/users/role", h.User.GetRole)
		protected.GET("/stats", h.System.Stats)

		protected.GET("/my-services", h.Catalog.MyServices)
		protected.POST("/services", h.Catalog.CreateService)
		protected.PATCH("/services/:id", h.Catalog.UpdateService)
		protected.DELETE("/services/:id", h.Catalog.DeleteService)
		protected.PATCH("/services/reviews/:id", h.Catalog.AddReview)

		protected.POST("/bookings", h.Booking.CreateBooking)
		protected.GET("/my-bookings", h.Booking.MyBookings)
		protected.DELETE("/booking/:id", h.Booking.DeleteBooking)
		protected.PATCH("/bookings/:id", h.Booking.UpdateStatus)
	}

	// Только для администраторов, роль перечитывается из базы
	admin := router.Group("")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/all-bookings", h.Booking.AllBookings)
		admin.GET("/all-users", h.User.ListUsers)
		admin.PATCH("/users/:id/role", h.User.ChangeRole)
	}

	return router
}

// corsConfig: "*" или пустой список разрешает любой origin, но без credentials
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        300,
	}

	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}

	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true
	return cfg
}
