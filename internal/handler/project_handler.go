package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agencyhub/internal/model"
	"agencyhub/internal/service/project"
)

type ProjectService interface {
	Create(ctx context.Context, in model.ProjectInput) (*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, projectID, status string, reopen bool) (*model.Project, bool, error)
	ListMilestones(ctx context.Context, projectID string) ([]model.ProjectMilestone, error)
	AddMilestone(ctx context.Context, projectID string, in model.MilestoneInput) (*model.ProjectMilestone, error)
	UpdateMilestone(ctx context.Context, id string, patch model.MilestonePatch) (*model.ProjectMilestone, error)
	DeleteMilestone(ctx context.Context, id string) error
	Progress(ctx context.Context, shortID string) (*project.ProgressView, error)
}

type ProjectHandler struct {
	svc    ProjectService
	logger *zap.Logger
}

func NewProjectHandler(svc ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger}
}

// projectResponse adds the derived progress to a project.
type projectResponse struct {
	*model.Project
	Progress int `json:"progress"`
}

func withProgress(p *model.Project) projectResponse {
	return projectResponse{Project: p, Progress: p.Progress()}
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "ListProjects", err)
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, withProgress(&projects[i]))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

func (h *ProjectHandler) Create(c *gin.Context) {
	h.logger.Info("CreateProject request received", zap.String("client_ip", c.ClientIP()))

	var in model.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "CreateProject", err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "CreateProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": withProgress(p)})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "GetProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": withProgress(p)})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("UpdateProject request received", zap.String("project_id", id))

	var patch model.ProjectPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "UpdateProject", err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, "UpdateProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": withProgress(p)})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("DeleteProject request received", zap.String("project_id", id))

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "DeleteProject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// SetStatus handles PUT /projects/:id/status.
func (h *ProjectHandler) SetStatus(c *gin.Context) {
	id := c.Param("id")

	var req struct {
		Status string `json:"status"`
		Reopen bool   `json:"reopen"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "SetProjectStatus", err)
		return
	}
	h.logger.Info("SetProjectStatus request received",
		zap.String("project_id", id),
		zap.String("status", req.Status),
		zap.Bool("reopen", req.Reopen),
	)

	p, changed, err := h.svc.SetStatus(c.Request.Context(), id, req.Status, req.Reopen)
	if err != nil {
		respondError(c, h.logger, "SetProjectStatus", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":  withProgress(p),
		"changed":  changed,
		"timeline": model.Timeline(p.Status),
	})
}

func (h *ProjectHandler) ListMilestones(c *gin.Context) {
	milestones, err := h.svc.ListMilestones(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "ListMilestones", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

func (h *ProjectHandler) AddMilestone(c *gin.Context) {
	var in model.MilestoneInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "AddMilestone", err)
		return
	}
	m, err := h.svc.AddMilestone(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, "AddMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": m})
}

func (h *ProjectHandler) UpdateMilestone(c *gin.Context) {
	var patch model.MilestonePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, h.logger, "UpdateMilestone", err)
		return
	}
	m, err := h.svc.UpdateMilestone(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, "UpdateMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestone": m})
}

func (h *ProjectHandler) DeleteMilestone(c *gin.Context) {
	if err := h.svc.DeleteMilestone(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "DeleteMilestone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Progress handles the public GET /progress/:short_id lookup.
func (h *ProjectHandler) Progress(c *gin.Context) {
	code := c.Param("short_id")
	h.logger.Info("ProjectProgress request received",
		zap.String("short_id", code),
		zap.String("client_ip", c.ClientIP()),
	)

	view, err := h.svc.Progress(c.Request.Context(), code)
	if err != nil {
		respondError(c, h.logger, "ProjectProgress", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
