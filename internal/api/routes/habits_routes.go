package routes

import (
	"github.com/cctncr/habitstreak/internal/api/handlers"
	"github.com/cctncr/habitstreak/internal/api/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

type HabitsRoutes struct {
	handler *handlers.HabitsHandler
}

func NewHabitsRoutes(handler *handlers.HabitsHandler) *HabitsRoutes {
	return &HabitsRoutes{handler: handler}
}

// RegisterRoutes registers all habit-related routes
func (h *HabitsRoutes) RegisterRoutes(router *gin.Engine, cache *middleware.CacheMiddleware) {
	habits := router.Group("/api/habits")

	// List and filter - specific routes before parameterized ones.
	// Compression for the larger list and heatmap payloads.
	habits.GET("", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.ListHabits)
	habits.POST("", cache.CacheInvalidate("habits:*"), h.handler.CreateHabit)
	habits.GET("/heatmap", cache.CacheResponse(), gzip.Gzip(gzip.DefaultCompression), h.handler.GetHeatmap)
	habits.GET("/due", h.handler.GetDueToday)

	// CRUD operations with parameters
	habits.GET("/:id", cache.CacheResponse(), h.handler.GetHabit)
	habits.PUT("/:id", cache.CacheInvalidate("habits:*"), h.handler.UpdateHabit)
	habits.POST("/:id/archive", cache.CacheInvalidate("habits:*"), h.handler.ArchiveHabit)
	habits.DELETE("/:id", cache.CacheInvalidate("habits:*"), h.handler.DeleteHabit)

	// Completion routes
	habits.POST("/:id/complete", cache.CacheInvalidate("habits:*"), h.handler.MarkCompleted)
	habits.POST("/:id/uncomplete", cache.CacheInvalidate("habits:*"), h.handler.UnmarkCompleted)
	habits.GET("/:id/stats", cache.CacheResponse(), h.handler.GetStats)
	habits.GET("/:id/activity", h.handler.GetActivitySummary)
}
