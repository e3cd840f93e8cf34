package handler

import (
	"net/http"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/broadcast"
	"github.com/gin-gonic/gin"
)

const (
	settlementEventName = "settlement"
	streamBuffer        = 16
)

// SettlementSubscriber is the live-listener registry the stream attaches to
type SettlementSubscriber interface {
	Subscribe(userID string, buffer int) *broadcast.Subscription
	Unsubscribe(id string)
}

// SettlementHandler streams settlement events to their users over server-sent events
type SettlementHandler struct {
	hub       SettlementSubscriber
	logger    core.Logger
	heartbeat time.Duration
}

// NewSettlementHandler creates a stream handler sending a keep-alive comment every heartbeat
func NewSettlementHandler(hub SettlementSubscriber, logger core.Logger, heartbeat time.Duration) *SettlementHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &SettlementHandler{
		hub:       hub,
		logger:    logger,
		heartbeat: heartbeat,
	}
}

// Stream handles GET /v1/settlements/stream.
// The subscription lives exactly as long as the request.
func (h *SettlementHandler) Stream(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondUnauthorized(c)
		return
	}

	sub := h.hub.Subscribe(userID, streamBuffer)
	defer h.hub.Unsubscribe(sub.ID)

	h.logger.Info("Settlement stream opened", map[string]any{
		"user_id":         userID,
		"subscription_id": sub.ID,
	})

	// streams outlive the server write timeout
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Settlement stream closed", map[string]any{
				"user_id":         userID,
				"subscription_id": sub.ID,
			})
			return
		case evt, open := <-sub.Events():
			if !open {
				return
			}
			c.SSEvent(settlementEventName, dto.NewSettlementEventResponse(evt))
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
