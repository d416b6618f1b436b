package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/metrics"
)

const (
	convertLockScope   = "convert"
	defaultDescription = "Project based on lead inquiry"
)

// Convert turns a lead into a project in Diskusi. Converting a lead that
// already has a project returns that project with created=false.
func (s *Service) Convert(ctx context.Context, leadID string) (p *model.Project, created bool, err error) {
	log := logger.WithTrace(ctx, s.logger)

	lead, err := s.leads.Get(ctx, leadID)
	if err != nil {
		return nil, false, err
	}

	if s.locker != nil {
		if !s.locker.AcquireOnce(ctx, convertLockScope, leadID) {
			metrics.IncrementLeadConversion("in_progress")
			return nil, false, fmt.Errorf("convert lead %s: %w", leadID, apperr.ErrConversionInProgress)
		}
		defer s.locker.Release(ctx, convertLockScope, leadID)
	}

	existing, err := s.existingProject(ctx, lead)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.markConverted(ctx, lead, existing.ID)
		metrics.IncrementLeadConversion("existing")
		log.Info("Lead already converted",
			zap.String("lead_id", lead.ID),
			zap.String("project_id", existing.ID),
		)
		return existing, false, nil
	}

	p = projectFromLead(lead)
	p.ID = uuid.NewString()
	if err := s.projects.Insert(ctx, p); err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			if raced, findErr := s.existingProject(ctx, lead); findErr == nil && raced != nil {
				s.markConverted(ctx, lead, raced.ID)
				metrics.IncrementLeadConversion("existing")
				return raced, false, nil
			}
		}
		metrics.IncrementLeadConversion("failed")
		log.Error("Failed to convert lead", zap.String("lead_id", lead.ID), zap.Error(err))
		return nil, false, err
	}

	s.markConverted(ctx, lead, p.ID)
	metrics.IncrementLeadConversion("created")
	log.Info("Lead converted to project",
		zap.String("lead_id", lead.ID),
		zap.String("project_id", p.ID),
		zap.String("short_id", p.ShortID),
	)
	return p, true, nil
}

func projectFromLead(lead *model.Lead) *model.Project {
	description := model.Deref(lead.ProjectDescription)
	if description == "" {
		description = defaultDescription
	}
	leadID := lead.ID
	return &model.Project{
		ShortID:     lead.ShortID,
		ClientName:  lead.Name,
		ProjectName: fmt.Sprintf("%s Project for %s", lead.ServiceType.Label(), lead.Name),
		Description: &description,
		Status:      model.StatusDiskusi,
		ClientPhone: lead.PhoneNumber,
		LeadID:      &leadID,
	}
}

// existingProject finds a project already created from lead, by recorded id,
// by lead id, then by shared short id. A project tied to another lead is
// never adopted.
func (s *Service) existingProject(ctx context.Context, lead *model.Lead) (*model.Project, error) {
	lookups := []func() (*model.Project, error){
		func() (*model.Project, error) {
			if lead.ConvertedProjectID == nil {
				return nil, apperr.ErrNotFound
			}
			return s.projects.FindByID(ctx, *lead.ConvertedProjectID)
		},
		func() (*model.Project, error) { return s.projects.FindByLeadID(ctx, lead.ID) },
		func() (*model.Project, error) {
			p, err := s.projects.FindByShortID(ctx, lead.ShortID)
			if err != nil {
				return nil, err
			}
			if p.LeadID != nil && *p.LeadID != lead.ID {
				return nil, apperr.ErrNotFound
			}
			return p, nil
		},
	}
	for _, lookup := range lookups {
		p, err := lookup()
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// markConverted records the conversion on the lead. A failure leaves the
// project in place; converting again repairs the lead.
func (s *Service) markConverted(ctx context.Context, lead *model.Lead, projectID string) {
	if lead.Processed && model.Deref(lead.ConvertedProjectID) == projectID {
		return
	}
	processed := true
	if _, err := s.leads.Update(ctx, lead.ID, model.LeadPatch{
		Processed:          &processed,
		ConvertedProjectID: &projectID,
	}); err != nil {
		logger.WithTrace(ctx, s.logger).Error("Failed to mark lead converted",
			zap.String("lead_id", lead.ID),
			zap.String("project_id", projectID),
			zap.Error(err),
		)
	}
}
