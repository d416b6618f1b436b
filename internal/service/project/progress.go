package project

import (
	"context"
	"fmt"
	"time"

	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
	"agencyhub/internal/shortid"
)

// ProgressView is the public projection of a project. It carries no
// contact details.
type ProgressView struct {
	ShortID             string                   `json:"short_id"`
	ProjectName         string                   `json:"project_name"`
	ClientName          string                   `json:"client_name"`
	Status              model.ProjectStatus      `json:"status"`
	Progress            int                      `json:"progress"`
	EstimatedCompletion *time.Time               `json:"estimated_completion"`
	Timeline            []model.TimelineStep     `json:"timeline"`
	Milestones          []model.ProjectMilestone `json:"milestones"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// Progress looks a project up by its short id, case-insensitively.
func (s *Service) Progress(ctx context.Context, code string) (*ProgressView, error) {
	code = shortid.Normalize(code)
	if !shortid.Valid(code) {
		return nil, fmt.Errorf("progress %q: %w", code, apperr.ErrNotFound)
	}

	p, err := s.projects.FindByShortID(ctx, code)
	if err != nil {
		return nil, err
	}
	milestones, err := s.milestones.FindByProjectID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if milestones == nil {
		milestones = []model.ProjectMilestone{}
	}

	return &ProgressView{
		ShortID:             p.ShortID,
		ProjectName:         p.ProjectName,
		ClientName:          p.ClientName,
		Status:              p.Status,
		Progress:            p.Status.Progress(),
		EstimatedCompletion: p.EstimatedCompletion,
		Timeline:            model.Timeline(p.Status),
		Milestones:          milestones,
		UpdatedAt:           p.UpdatedAt,
	}, nil
}
