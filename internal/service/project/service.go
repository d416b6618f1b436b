// Package project runs the project lifecycle: CRUD, status transitions,
// lead conversion, milestones and the public progress lookup.
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
	"agencyhub/internal/shortid"
	"agencyhub/pkg/logger"
)

type Repository interface {
	Insert(ctx context.Context, p *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	FindByShortID(ctx context.Context, shortID string) (*model.Project, error)
	FindByLeadID(ctx context.Context, leadID string) (*model.Project, error)
	FindAll(ctx context.Context) ([]model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, id string) error
}

type MilestoneRepository interface {
	Insert(ctx context.Context, m *model.ProjectMilestone) error
	FindByID(ctx context.Context, id string) (*model.ProjectMilestone, error)
	FindByProjectID(ctx context.Context, projectID string) ([]model.ProjectMilestone, error)
	Update(ctx context.Context, m *model.ProjectMilestone) error
	Delete(ctx context.Context, id string) error
}

// LeadStore is the slice of the lead store conversion needs.
type LeadStore interface {
	Get(ctx context.Context, id string) (*model.Lead, error)
	Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error)
}

type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, project model.Project, from, to model.ProjectStatus) error
}

// Locker is a short-lived cross-process mutex.
type Locker interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
	Release(ctx context.Context, scope, key string)
}

type ShortIDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// ShortIDChecker reports whether a short id is already held by a lead.
type ShortIDChecker interface {
	ShortIDExists(ctx context.Context, shortID string) (bool, error)
}

type Options struct {
	// ForwardOnly rejects backward status moves unless reopen is set.
	ForwardOnly bool
}

type Service struct {
	projects   Repository
	milestones MilestoneRepository
	leads      LeadStore
	notifier   StatusNotifier
	locker     Locker
	shortIDs   ShortIDGenerator
	leadCodes  ShortIDChecker
	opts       Options
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	projects Repository,
	milestones MilestoneRepository,
	leads LeadStore,
	notifier StatusNotifier,
	locker Locker,
	shortIDs ShortIDGenerator,
	leadCodes ShortIDChecker,
	opts Options,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:   projects,
		milestones: milestones,
		leads:      leads,
		notifier:   notifier,
		locker:     locker,
		shortIDs:   shortIDs,
		leadCodes:  leadCodes,
		opts:       opts,
		now:        time.Now,
		logger:     logger,
	}
}

// Create stores a manually entered project. Without a short id one is
// allocated.
func (s *Service) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	p, err := in.ToProject()
	if err != nil {
		return nil, err
	}

	if p.ShortID == "" {
		id, err := s.shortIDs.Generate(ctx)
		if err != nil {
			return nil, err
		}
		p.ShortID = id
	} else if !shortid.Valid(p.ShortID) {
		return nil, apperr.Validation("short_id", "must be 6 characters of A-Z or 0-9")
	} else if s.leadCodes != nil {
		// A lead's code only reaches a project through Convert.
		taken, err := s.leadCodes.ShortIDExists(ctx, p.ShortID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("create project: short id %s belongs to a lead: %w", p.ShortID, apperr.ErrDuplicate)
		}
	}

	p.ID = uuid.NewString()
	if err := s.projects.Insert(ctx, p); err != nil {
		return nil, err
	}

	logger.WithTrace(ctx, s.logger).Info("Project created",
		zap.String("project_id", p.ID),
		zap.String("short_id", p.ShortID),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]model.Project, error) {
	return s.projects.FindAll(ctx)
}

// Update edits a project. A status in the patch goes through the same
// transition rules and notification as SetStatus.
func (s *Service) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	to := from
	if patch.Status != nil {
		to, err = model.ParseProjectStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		if err := model.CheckTransition(from, to, patch.Reopen, s.opts.ForwardOnly); err != nil {
			return nil, err
		}
	}

	if err := p.ApplyFields(patch); err != nil {
		return nil, err
	}
	p.Status = to

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	if from != to {
		s.statusChanged(ctx, *p, from, to)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	logger.WithTrace(ctx, s.logger).Info("Project deleted", zap.String("project_id", id))
	return nil
}
