package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/api"
	"github.com/lunara-app/backend/internal/database"
	"github.com/lunara-app/backend/internal/middleware"
	"github.com/lunara-app/backend/internal/service"
)

// Handlers bundles every API handler the router mounts.
type Handlers struct {
	Auth          *api.AuthHandler
	Profile       *api.ProfileHandler
	Logs          *api.LogHandler
	Calendar      *api.CalendarHandler
	Gamification  *api.GamificationHandler
	Notifications *api.NotificationHandler
	Push          *api.PushHandler
	Reminders     *api.ReminderHandler
	Todos         *api.TodoHandler
	Insights      *api.InsightsHandler
	Cron          *api.CronHandler
}

// SetupRouter configures the application routes.
func SetupRouter(h Handlers, authService *service.AuthService, db *gorm.DB, redisClient *redis.Client, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "db": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := database.HealthCheck(ctx, db); err != nil {
			status["status"] = "degraded"
			status["db"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
			}
		}
		c.JSON(code, status)
	})

	v1 := router.Group("/api/v1")

	// Public routes
	h.Auth.RegisterRoutes(v1)
	h.Cron.RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	if redisClient != nil {
		protected.Use(middleware.NewAPIRateLimiter(redisClient).RateLimitMiddleware())
	}
	{
		h.Profile.RegisterRoutes(protected)
		h.Logs.RegisterRoutes(protected)
		h.Calendar.RegisterRoutes(protected)
		h.Gamification.RegisterRoutes(protected)
		h.Notifications.RegisterRoutes(protected)
		h.Push.RegisterRoutes(protected)
		h.Reminders.RegisterRoutes(protected)
		h.Todos.RegisterRoutes(protected)
		h.Insights.RegisterRoutes(protected)
	}

	return router
}
