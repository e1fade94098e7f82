package services

import (
	"context"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// AvailabilityCache is a short-lived cache of ledger availability
type AvailabilityCache interface {
	Get(ctx context.Context, ref models.EntityRef) (int, bool, error)
	Set(ctx context.Context, ref models.EntityRef, available int) error
	Invalidate(ctx context.Context, ref models.EntityRef) error
}

// NoopAvailabilityCache is used when Redis is not configured
type NoopAvailabilityCache struct{}

func (NoopAvailabilityCache) Get(context.Context, models.EntityRef) (int, bool, error) {
	return 0, false, nil
}
func (NoopAvailabilityCache) Set(context.Context, models.EntityRef, int) error { return nil }
func (NoopAvailabilityCache) Invalidate(context.Context, models.EntityRef) error {
	return nil
}

// AvailabilityService answers "how many seats are left" for searches.
// The ledger is authoritative; the cache is consulted first and refilled on a miss.
type AvailabilityService struct {
	ledger database.SeatLedger
	cache  AvailabilityCache
	logger *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(ledger database.SeatLedger, cache AvailabilityCache, logger *logrus.Logger) *AvailabilityService {
	if cache == nil {
		cache = NoopAvailabilityCache{}
	}
	return &AvailabilityService{ledger: ledger, cache: cache, logger: logger}
}

// Available returns the free seat count, or nil when the entity has no ledger entry.
// Cache failures are logged and the ledger is read instead.
func (s *AvailabilityService) Available(ctx context.Context, ref models.EntityRef) (*int, error) {
	n, hit, err := s.cache.Get(ctx, ref)
	if err != nil {
		s.logger.WithError(err).WithField("entity", ref.String()).Warn("Availability cache read failed")
	} else if hit {
		return &n, nil
	}

	available, known, err := s.ledger.Available(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, nil
	}

	if err := s.cache.Set(ctx, ref, available); err != nil {
		s.logger.WithError(err).WithField("entity", ref.String()).Warn("Availability cache write failed")
	}
	return &available, nil
}

// Invalidate drops any cached value after the ledger changed
func (s *AvailabilityService) Invalidate(ctx context.Context, ref models.EntityRef) {
	if err := s.cache.Invalidate(ctx, ref); err != nil {
		s.logger.WithError(err).WithField("entity", ref.String()).Warn("Availability cache invalidation failed")
	}
}
