package routes

import (
	"time"

	"github.com/cctncr/habitstreak/internal/api/handlers"
	"github.com/cctncr/habitstreak/internal/api/middleware"
	"github.com/cctncr/habitstreak/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ReminderRoutes struct {
	handler *handlers.ReminderHandler
	log     *logger.Logger
}

func NewReminderRoutes(handler *handlers.ReminderHandler, log *logger.Logger) *ReminderRoutes {
	return &ReminderRoutes{handler: handler, log: log}
}

// RegisterRoutes registers reminder configuration and permission flow routes
func (r *ReminderRoutes) RegisterRoutes(router *gin.Engine) {
	// Scheduling goes through the platform adapter, so shed load when it
	// keeps failing instead of hammering it.
	breaker := middleware.NewCircuitBreaker(middleware.CircuitBreakerConfig{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 5,
	}, r.log)

	reminders := router.Group("/api/reminders")
	reminders.Use(breaker.CircuitBreakerMiddleware())

	reminders.GET("/due", r.handler.DueOn)
	reminders.POST("/sync", r.handler.SyncAll)
	reminders.POST("/cancel-all", r.handler.CancelAll)

	reminders.GET("/:id", r.handler.Get)
	reminders.GET("/:id/weekdays", r.handler.GetWeekdays)
	reminders.PUT("/:id", r.handler.Enable)
	reminders.DELETE("/:id", r.handler.Disable)
	reminders.PATCH("/:id/time", r.handler.UpdateTime)

	// Permission flow: the pre-ask phase, then the system dialog result.
	permissions := router.Group("/api/notifications/permission")
	permissions.POST("/request", r.handler.RequestPermission)
	permissions.POST("/result", r.handler.PermissionResult)
	permissions.POST("/invalidate", r.handler.InvalidatePermissionCache)
	permissions.POST("/open-settings", r.handler.OpenSettings)

	router.PUT("/api/notifications/settings", r.handler.UpdateSettings)
}
