package project

import (
	"context"

	"github.com/google/uuid"

	"agencyhub/internal/model"
)

func (s *Service) ListMilestones(ctx context.Context, projectID string) ([]model.ProjectMilestone, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	milestones, err := s.milestones.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if milestones == nil {
		milestones = []model.ProjectMilestone{}
	}
	return milestones, nil
}

// AddMilestone appends to the project's list unless in names an order index.
func (s *Service) AddMilestone(ctx context.Context, projectID string, in model.MilestoneInput) (*model.ProjectMilestone, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	m, err := in.ToMilestone(projectID)
	if err != nil {
		return nil, err
	}
	m.ID = uuid.NewString()
	m.SyncCompletion(s.now().UTC())

	if err := s.milestones.Insert(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMilestone(ctx context.Context, id string, patch model.MilestonePatch) (*model.ProjectMilestone, error) {
	m, err := s.milestones.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(patch, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.milestones.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMilestone(ctx context.Context, id string) error {
	return s.milestones.Delete(ctx, id)
}
