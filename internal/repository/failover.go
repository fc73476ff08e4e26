package repository

import (
	"context"
	"sync/atomic"
	"time"

	"venuebook/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverThrottleRepository uses the primary counter until it errors,
// then serves from the fallback and probes the primary every minute.
type FailoverThrottleRepository struct {
	primary   domain.ThrottleRepository
	fallback  domain.ThrottleRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck time.Time
}

func NewFailoverThrottleRepository(primary, fallback domain.ThrottleRepository, logger *zerolog.Logger) *FailoverThrottleRepository {
	return &FailoverThrottleRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverThrottleRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.Allow(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("Primary throttle repository failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck = time.Now()
	}

	// Try to recover after 1 minute
	if r.isDown.Load() && time.Since(r.lastCheck) > time.Minute {
		allowed, err := r.primary.Allow(ctx, key, limit, window)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.lastCheck = time.Now()
	}

	return r.fallback.Allow(ctx, key, limit, window)
}
