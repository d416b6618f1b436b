package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/internal/complexity"
	"agencyhub/internal/model"
	"agencyhub/pkg/metrics"
)

type AnalysisHandler struct {
	rules  complexity.Rules
	now    func() time.Time
	logger *zap.Logger
}

func NewAnalysisHandler(rules complexity.Rules, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{rules: rules, now: model.NowWIB, logger: logger}
}

// Analyze handles POST /ai-analyze. It always answers 200; unreadable input
// gets success=false and the fallback reply.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req complexity.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Analyze: invalid request body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"success":  false,
			"analysis": complexity.FallbackReply,
			"error":    err.Error(),
		})
		return
	}

	a := complexity.Classify(h.rules, req.Features, req.ProjectDescription, strings.TrimSpace(req.Budget))
	metrics.IncrementComplexityAssessment(string(a.Tier))

	h.logger.Info("Analyze: completed",
		zap.String("service_type", req.ServiceType),
		zap.String("budget", req.Budget),
		zap.String("complexity", a.Tier.Label()),
		zap.Int("score", a.Score),
	)
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"analysis":        complexity.Compose(req, a, h.now()),
		"assessment":      a,
		"recommendations": complexity.Recommendations(a.Tier, req.Budget),
	})
}
