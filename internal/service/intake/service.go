// Package intake accepts public lead submissions.
package intake

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agencyhub/internal/model"
	"agencyhub/pkg/logger"
)

type LeadCreator interface {
	Create(ctx context.Context, in model.LeadInput) (*model.Lead, error)
}

type LeadNotifier interface {
	NotifyBusiness(ctx context.Context, lead model.Lead) error
	NotifyClient(ctx context.Context, lead model.Lead) error
}

type Service struct {
	leads    LeadCreator
	notifier LeadNotifier
	logger   *zap.Logger
}

func NewService(leads LeadCreator, notifier LeadNotifier, logger *zap.Logger) *Service {
	return &Service{leads: leads, notifier: notifier, logger: logger}
}

// Submit stores the lead, then sends the business alert and the client
// confirmation. Notification failures are logged and never fail the
// submission.
func (s *Service) Submit(ctx context.Context, in model.LeadInput) (*model.Lead, error) {
	lead, err := s.leads.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	if s.notifier == nil {
		return lead, nil
	}

	log := logger.WithTrace(ctx, s.logger).With(zap.String("lead_id", lead.ID))
	var g errgroup.Group
	g.Go(func() error {
		if err := s.notifier.NotifyBusiness(ctx, *lead); err != nil {
			log.Warn("Business notification failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := s.notifier.NotifyClient(ctx, *lead); err != nil {
			log.Warn("Client notification failed", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	return lead, nil
}
