package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/repository"
)

// ResetSweeper periodically clears lapsed reset tokens so the pair never
// lingers on a record after it stopped being usable.
type ResetSweeper struct {
	store    repository.ExpiredResetCleaner
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewResetSweeper builds a sweeper running every interval.
func NewResetSweeper(store repository.ExpiredResetCleaner, interval time.Duration, logger *zap.Logger) *ResetSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ResetSweeper{store: store, interval: interval, logger: logger, now: time.Now}
}

// Run sweeps until ctx is canceled.
func (s *ResetSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single pass and returns how many records were cleared.
func (s *ResetSweeper) SweepOnce(ctx context.Context) int64 {
	cleared, err := s.store.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		s.logger.Warn("reset token sweep failed", zap.Error(err))
		return 0
	}
	if cleared > 0 {
		s.logger.Info("cleared expired reset tokens", zap.Int64("count", cleared))
	}
	return cleared
}
