package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/internal/model"
)

type LeadSubmitter interface {
	Submit(ctx context.Context, in model.LeadInput) (*model.Lead, error)
}

type LeadStore interface {
	List(ctx context.Context) []model.Lead
	Get(ctx context.Context, id string) (*model.Lead, error)
	Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error)
	Delete(ctx context.Context, id string) error
}

type LeadConverter interface {
	Convert(ctx context.Context, leadID string) (*model.Project, bool, error)
}

type AttemptLister interface {
	FindByLeadID(ctx context.Context, leadID string) ([]model.NotificationAttempt, error)
}

type LeadHandler struct {
	intake    LeadSubmitter
	store     LeadStore
	converter LeadConverter
	attempts  AttemptLister
	logger    *zap.Logger
}

func NewLeadHandler(intake LeadSubmitter, store LeadStore, converter LeadConverter, attempts AttemptLister, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		intake:    intake,
		store:     store,
		converter: converter,
		attempts:  attempts,
		logger:    logger,
	}
}

// Submit handles POST /leads from the public form.
func (h *LeadHandler) Submit(c *gin.Context) {
	h.logger.Info("SubmitLead request received", zap.String("client_ip", c.ClientIP()))

	var in model.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "SubmitLead", err)
		return
	}

	lead, err := h.intake.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "SubmitLead", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Lead submitted successfully",
		"short_id": lead.ShortID,
		"lead":     lead,
	})
}

func (h *LeadHandler) List(c *gin.Context) {
	leads := h.store.List(c.Request.Context())
	h.logger.Info("ListLeads: success", zap.Int("lead_count", len(leads)))
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (h *LeadHandler) Get(c *gin.Context) {
	lead, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "GetLead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// Update handles PUT /leads/:id. Only processed and ai_analysis are editable.
func (h *LeadHandler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("UpdateLead request received", zap.String("lead_id", id))

	var patch model.LeadPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "UpdateLead", err)
		return
	}

	lead, err := h.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "UpdateLead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

func (h *LeadHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("DeleteLead request received", zap.String("lead_id", id))

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteLead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Convert handles POST /leads/:id/convert. Repeating it returns the same
// project with created=false.
func (h *LeadHandler) Convert(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("ConvertLead request received", zap.String("lead_id", id))

	project, created, err := h.converter.Convert(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "ConvertLead", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":  project,
		"created":  created,
		"progress": project.Progress(),
	})
}

// Notifications handles GET /leads/:id/notifications.
func (h *LeadHandler) Notifications(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if _, err := h.store.Get(ctx, id); err != nil {
		respondError(c, h.logger, "LeadNotifications", err)
		return
	}
	attempts, err := h.attempts.FindByLeadID(ctx, id)
	if err != nil {
		respondError(c, h.logger, "LeadNotifications", err)
		return
	}
	if attempts == nil {
		attempts = []model.NotificationAttempt{}
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
