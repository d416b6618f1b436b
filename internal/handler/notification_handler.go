package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/internal/model"
	"agencyhub/internal/notification"
)

type LeadFanout interface {
	NotifyLeadFanout(ctx context.Context, lead model.Lead) notification.FanoutResult
}

type LeadGetter interface {
	Get(ctx context.Context, id string) (*model.Lead, error)
}

type NotificationHandler struct {
	notifier LeadFanout
	leads    LeadGetter
	logger   *zap.Logger
}

func NewNotificationHandler(notifier LeadFanout, leads LeadGetter, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, leads: leads, logger: logger}
}

// Send handles POST /send-notification. The body names a stored lead by
// lead_id or carries the lead fields inline.
func (h *NotificationHandler) Send(c *gin.Context) {
	var req struct {
		LeadID string `json:"lead_id"`
		model.LeadInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "SendNotification", err)
		return
	}
	h.logger.Info("SendNotification request received", zap.String("lead_id", req.LeadID))

	var lead model.Lead
	if req.LeadID != "" {
		stored, err := h.leads.Get(c.Request.Context(), req.LeadID)
		if err != nil {
			respondError(c, h.logger, "SendNotification", err)
			return
		}
		lead = *stored
	} else {
		in, serviceType, err := req.LeadInput.Normalize()
		if err != nil {
			respondError(c, h.logger, "SendNotification", err)
			return
		}
		lead = model.Lead{
			Name:               in.Name,
			Address:            in.Address,
			ServiceType:        serviceType,
			PhoneNumber:        model.NilIfEmpty(in.PhoneNumber),
			ProjectDescription: model.NilIfEmpty(in.ProjectDescription),
			Features:           model.NilIfEmpty(in.Features),
			Budget:             model.NilIfEmpty(in.Budget),
			SubmittedAt:        time.Now().UTC(),
		}
	}

	res := h.notifier.NotifyLeadFanout(c.Request.Context(), lead)
	c.JSON(http.StatusOK, gin.H{
		"success": res.BusinessError == "" && res.ClientError == "",
		"result":  res,
	})
}
