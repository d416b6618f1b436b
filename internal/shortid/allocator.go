// Package shortid hands out the 6-character codes shared by leads and the
// projects converted from them.
package shortid

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/pkg/metrics"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 6

	DefaultMaxAttempts = 10
	reserveScope       = "shortid"
)

// Checker reports whether a short id is already taken in one record set.
type Checker interface {
	ShortIDExists(ctx context.Context, shortID string) (bool, error)
}

// Reserver claims a candidate across processes. AcquireOnce returns false
// when someone else holds it.
type Reserver interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

type Allocator struct {
	checkers    []Checker
	reserver    Reserver
	maxAttempts int
	intn        func(n int) int
	logger      *zap.Logger
}

// NewAllocator builds an allocator that checks every candidate against all
// checkers. reserver may be nil.
func NewAllocator(maxAttempts int, reserver Reserver, logger *zap.Logger, checkers ...Checker) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Allocator{
		checkers:    checkers,
		reserver:    reserver,
		maxAttempts: maxAttempts,
		intn:        rand.Intn,
		logger:      logger,
	}
}

// Generate returns the first free candidate, or ErrAllocationExhausted after
// maxAttempts collisions.
func (a *Allocator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		candidate := a.candidate()

		taken, err := a.taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if taken {
			a.logger.Debug("Short id collision",
				zap.String("candidate", candidate),
				zap.Int("attempt", attempt),
			)
			continue
		}

		if a.reserver != nil && !a.reserver.AcquireOnce(ctx, reserveScope, candidate) {
			continue
		}

		metrics.RecordShortIDAllocation(attempt, false)
		return candidate, nil
	}

	metrics.RecordShortIDAllocation(a.maxAttempts, true)
	a.logger.Error("Short id allocation exhausted", zap.Int("max_attempts", a.maxAttempts))
	return "", fmt.Errorf("%w after %d attempts", apperr.ErrAllocationExhausted, a.maxAttempts)
}

func (a *Allocator) candidate() string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[a.intn(len(Alphabet))])
	}
	return b.String()
}

func (a *Allocator) taken(ctx context.Context, candidate string) (bool, error) {
	for _, c := range a.checkers {
		exists, err := c.ShortIDExists(ctx, candidate)
		if err != nil {
			return false, apperr.Storage("check short id", err)
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

// Normalize upper-cases and trims a user-supplied code.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Valid reports whether id has the allocator's shape.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(Alphabet, id[i]) < 0 {
			return false
		}
	}
	return true
}
