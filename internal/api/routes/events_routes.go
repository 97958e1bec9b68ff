package routes

import (
	"github.com/cctncr/habitstreak/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

type EventsRoutes struct {
	handler *handlers.EventsHandler
}

func NewEventsRoutes(handler *handlers.EventsHandler) *EventsRoutes {
	return &EventsRoutes{handler: handler}
}

// RegisterRoutes registers the live habit event stream
func (r *EventsRoutes) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/events", r.handler.Stream)
}
