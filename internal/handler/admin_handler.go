package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/pkg/outbox"
)

type OutboxReplayer interface {
	ReplayEvent(ctx context.Context, eventID int64) error
	ReplayFailedEvents(ctx context.Context, limit int) (int, error)
}

type AdminHandler struct {
	replayer OutboxReplayer
	logger   *zap.Logger
}

func NewAdminHandler(replayer OutboxReplayer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{replayer: replayer, logger: logger}
}

// ReplayOutbox handles POST /admin/outbox/replay. With ?id= it replays one
// event, otherwise up to ?limit= failed events.
func (h *AdminHandler) ReplayOutbox(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}
		h.logger.Info("ReplayOutbox request received", zap.Int64("event_id", id))

		if err := h.replayer.ReplayEvent(ctx, id); err != nil {
			if errors.Is(err, outbox.ErrEventNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			respondError(c, h.logger, "ReplayOutbox", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"replayed": 1})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	n, err := h.replayer.ReplayFailedEvents(ctx, limit)
	if err != nil {
		respondError(c, h.logger, "ReplayOutbox", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replayed": n})
}
