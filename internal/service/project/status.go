package project

import (
	"context"

	"go.uber.org/zap"

	"agencyhub/internal/model"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/metrics"
)

// SetStatus moves a project to the status named by raw. An unchanged status
// writes nothing and notifies nobody. changed reports whether a write
// happened.
func (s *Service) SetStatus(ctx context.Context, projectID, raw string, reopen bool) (p *model.Project, changed bool, err error) {
	to, err := model.ParseProjectStatus(raw)
	if err != nil {
		return nil, false, err
	}

	p, err = s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, false, err
	}

	from := p.Status
	if from == to {
		return p, false, nil
	}
	if err := model.CheckTransition(from, to, reopen, s.opts.ForwardOnly); err != nil {
		return nil, false, err
	}

	p.Status = to
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, false, err
	}

	s.statusChanged(ctx, *p, from, to)
	return p, true, nil
}

// statusChanged runs the side effects of a persisted status move. The
// notification is best effort.
func (s *Service) statusChanged(ctx context.Context, p model.Project, from, to model.ProjectStatus) {
	log := logger.WithTrace(ctx, s.logger)
	metrics.IncrementStatusTransition(string(from), string(to))
	log.Info("Project status changed",
		zap.String("project_id", p.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStatusChange(ctx, p, from, to); err != nil {
		log.Warn("Status change notification failed",
			zap.String("project_id", p.ID),
			zap.Error(err),
		)
	}
}
