package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agencyhub/internal/handler"
	"agencyhub/pkg/otel"
)

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Handlers struct {
	Auth         *handler.AuthHandler
	Lead         *handler.LeadHandler
	Project      *handler.ProjectHandler
	Analysis     *handler.AnalysisHandler
	Notification *handler.NotificationHandler
	// Admin is nil when no message broker is configured.
	Admin *handler.AdminHandler
}

func NewRouter(h Handlers, jwtSecret string, checks map[string]ReadinessCheck, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(MetricsMiddleware())
	r.Use(RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		for name, check := range checks {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + "_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/admin/login", h.Auth.Login)
	r.POST("/leads", h.Lead.Submit)
	r.POST("/ai-analyze", h.Analysis.Analyze)
	r.GET("/progress/:short_id", h.Project.Progress)

	// Admin
	admin := r.Group("/")
	admin.Use(AuthMiddleware(jwtSecret))
	{
		admin.GET("/leads", h.Lead.List)
		admin.GET("/leads/:id", h.Lead.Get)
		admin.PUT("/leads/:id", h.Lead.Update)
		admin.DELETE("/leads/:id", h.Lead.Delete)
		admin.POST("/leads/:id/convert", h.Lead.Convert)
		admin.GET("/leads/:id/notifications", h.Lead.Notifications)

		admin.GET("/projects", h.Project.List)
		admin.POST("/projects", h.Project.Create)
		admin.GET("/projects/:id", h.Project.Get)
		admin.PUT("/projects/:id", h.Project.Update)
		admin.DELETE("/projects/:id", h.Project.Delete)
		admin.PUT("/projects/:id/status", h.Project.SetStatus)
		admin.GET("/projects/:id/milestones", h.Project.ListMilestones)
		admin.POST("/projects/:id/milestones", h.Project.AddMilestone)
		admin.PUT("/milestones/:id", h.Project.UpdateMilestone)
		admin.DELETE("/milestones/:id", h.Project.DeleteMilestone)

		admin.POST("/send-notification", h.Notification.Send)

		if h.Admin != nil {
			admin.POST("/admin/outbox/replay", h.Admin.ReplayOutbox)
		}
	}

	return r
}
