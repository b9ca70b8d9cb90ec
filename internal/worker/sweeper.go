package worker

import (
	"context"
	"log/slog"
	"time"

	"jersey-storefront/internal/service"
)

// StaleSweeper periodically settles pending orders that never received a
// provider notification.
type StaleSweeper struct {
	reconciler service.ReconcileService
	interval   time.Duration
	logger     *slog.Logger
}

func NewStaleSweeper(reconciler service.ReconcileService, interval time.Duration, logger *slog.Logger) *StaleSweeper {
	return &StaleSweeper{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger.With("worker", "sweeper"),
	}
}

func (s *StaleSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("stale order sweeper started", "interval", s.interval)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			s.logger.Info("stale order sweeper stopped")
			return
		}
	}
}

func (s *StaleSweeper) sweep(ctx context.Context) {
	if _, err := s.reconciler.SweepStale(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("sweep stale orders", "error", err)
	}
}
