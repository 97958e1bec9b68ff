package handlers

import (
	"net/http"
	"time"

	"github.com/cctncr/habitstreak/internal/infrastructure/cache"
	"github.com/cctncr/habitstreak/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventsHandler streams habit events to WebSocket clients. Events are
// fanned out through the redis pub/sub channel the habits service and
// dispatcher publish to.
type EventsHandler struct {
	redis    *cache.RedisClient
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(redis *cache.RedisClient, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{
		redis:  redis,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in development
			},
		},
	}
}

// Stream handles WebSocket connections for real-time habit events
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Event streaming unavailable"})
		return
	}

	h.logger.Info("WebSocket connection attempt",
		zap.String("remote_addr", c.Request.RemoteAddr))

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade to WebSocket",
			zap.Error(err),
			zap.String("remote_addr", c.Request.RemoteAddr))
		return
	}
	defer func() {
		ws.Close()
		h.logger.Info("WebSocket connection closed",
			zap.String("remote_addr", c.Request.RemoteAddr))
	}()

	ws.SetReadLimit(1024)
	ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	sub := h.redis.SubscribeHabitEvents(c.Request.Context())
	defer sub.Close()

	// Reader goroutine: clients send nothing meaningful, but reading is
	// how we learn the connection closed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure,
					websocket.CloseAbnormalClosure) {
					h.logger.Error("WebSocket read error", zap.Error(err))
				}
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	events := sub.Channel()
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			// Payloads are already JSON-encoded habit events.
			if err := ws.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.logger.Error("WebSocket write error", zap.Error(err))
				return
			}

		case <-pingTicker.C:
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Error("WebSocket ping error", zap.Error(err))
				return
			}

		case <-done:
			return
		}
	}
}
