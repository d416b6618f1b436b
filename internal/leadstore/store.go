// Package leadstore owns lead persistence: the relational table is the
// write of record and a flat JSON file mirrors it.
package leadstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agencyhub/internal/apperr"
	"agencyhub/internal/model"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/metrics"
)

const maxInsertAttempts = 3

// Repository is the relational side of the store.
type Repository interface {
	Insert(ctx context.Context, l *model.Lead) error
	FindByID(ctx context.Context, id string) (*model.Lead, error)
	FindAll(ctx context.Context) ([]model.Lead, error)
	Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error)
	Delete(ctx context.Context, id string) error
}

// Mirror is the flat-file side of the store.
type Mirror interface {
	Load() ([]model.Lead, error)
	Upsert(lead model.Lead) error
	Remove(id string) error
}

type ShortIDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type Store struct {
	repo    Repository
	mirror  Mirror
	shortID ShortIDGenerator
	now     func() time.Time
	logger  *zap.Logger
}

// NewStore wires the store. mirror may be nil to disable the flat file.
func NewStore(repo Repository, mirror Mirror, shortID ShortIDGenerator, logger *zap.Logger) *Store {
	return &Store{
		repo:    repo,
		mirror:  mirror,
		shortID: shortID,
		now:     time.Now,
		logger:  logger,
	}
}

// Create validates in, assigns ids and writes the lead. A failed table
// write fails the call; a failed mirror write is only logged.
func (s *Store) Create(ctx context.Context, in model.LeadInput) (*model.Lead, error) {
	in, serviceType, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	lead := &model.Lead{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Address:            in.Address,
		ServiceType:        serviceType,
		PhoneNumber:        model.NilIfEmpty(in.PhoneNumber),
		ProjectDescription: model.NilIfEmpty(in.ProjectDescription),
		Features:           model.NilIfEmpty(in.Features),
		Budget:             model.NilIfEmpty(in.Budget),
		SubmittedAt:        s.now().UTC(),
		Processed:          false,
	}

	log := logger.WithTrace(ctx, s.logger)
	for attempt := 1; ; attempt++ {
		shortID, err := s.shortID.Generate(ctx)
		if err != nil {
			log.Error("Failed to allocate short id", zap.Error(err))
			return nil, err
		}
		lead.ShortID = shortID

		err = s.repo.Insert(ctx, lead)
		if err == nil {
			break
		}
		if errors.Is(err, apperr.ErrDuplicate) && attempt < maxInsertAttempts {
			log.Warn("Short id taken at insert, reallocating",
				zap.String("short_id", shortID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		log.Error("Failed to store lead", zap.String("lead_id", lead.ID), zap.Error(err))
		if errors.Is(err, apperr.ErrStorage) {
			return nil, err
		}
		return nil, apperr.Storage("insert lead", err)
	}

	s.mirrorUpsert(ctx, *lead)
	metrics.IncrementLeadSubmitted(string(lead.ServiceType))

	log.Info("Lead stored",
		zap.String("lead_id", lead.ID),
		zap.String("short_id", lead.ShortID),
		zap.String("service_type", string(lead.ServiceType)),
	)
	return lead, nil
}

// List merges both sources by id, preferring the file copy, newest first.
// It never fails: an unreadable source contributes nothing.
func (s *Store) List(ctx context.Context) []model.Lead {
	var dbLeads, fileLeads []model.Lead

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leads, err := s.repo.FindAll(gctx)
		if err != nil {
			s.logger.Warn("Lead table unavailable for listing", zap.Error(err))
			return nil
		}
		dbLeads = leads
		return nil
	})
	if s.mirror != nil {
		g.Go(func() error {
			leads, err := s.mirror.Load()
			if err != nil {
				s.logger.Warn("Lead mirror unavailable for listing", zap.Error(err))
				return nil
			}
			fileLeads = leads
			return nil
		})
	}
	_ = g.Wait()

	return merge(dbLeads, fileLeads)
}

func merge(dbLeads, fileLeads []model.Lead) []model.Lead {
	byID := make(map[string]model.Lead, len(dbLeads)+len(fileLeads))
	for _, l := range dbLeads {
		byID[l.ID] = l
	}
	for _, l := range fileLeads {
		byID[l.ID] = l
	}

	out := make([]model.Lead, 0, len(byID))
	for _, l := range byID {
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

func (s *Store) Get(ctx context.Context, id string) (*model.Lead, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies patch in the table, then mirrors the result.
func (s *Store) Update(ctx context.Context, id string, patch model.LeadPatch) (*model.Lead, error) {
	if patch.Empty() {
		return nil, apperr.Validation("body", "no updatable fields provided")
	}
	lead, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.mirrorUpsert(ctx, *lead)
	return lead, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Remove(id); err != nil {
			logger.WithTrace(ctx, s.logger).Warn("Failed to remove lead from mirror",
				zap.String("lead_id", id),
				zap.Error(err),
			)
		}
	}
	logger.WithTrace(ctx, s.logger).Info("Lead deleted", zap.String("lead_id", id))
	return nil
}

func (s *Store) mirrorUpsert(ctx context.Context, lead model.Lead) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Upsert(lead); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Failed to mirror lead",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
	}
}
