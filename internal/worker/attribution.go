package worker

import (
	"context"
	"log/slog"
	"time"

	"jersey-storefront/internal/client"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/model"
	"jersey-storefront/internal/repository"
)

// AttributionPoller drains the attribution outbox. Failed deliveries are
// retried with exponential backoff until MaxAttempts, then parked as dead.
type AttributionPoller struct {
	repo        repository.AttributionForwardRepository
	client      client.AttributionClient
	interval    time.Duration
	batchSize   int
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewAttributionPoller(
	repo repository.AttributionForwardRepository,
	attributionClient client.AttributionClient,
	cfg config.Attribution,
	logger *slog.Logger,
) *AttributionPoller {
	return &AttributionPoller{
		repo:        repo,
		client:      attributionClient,
		interval:    cfg.PollInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		maxBackoff:  cfg.MaxBackoff,
		logger:      logger.With("worker", "attribution"),
		now:         time.Now,
	}
}

func (p *AttributionPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("attribution poller started", "interval", p.interval)
	for {
		select {
		case <-ticker.C:
			p.processDue(ctx)
		case <-ctx.Done():
			p.logger.Info("attribution poller stopped")
			return
		}
	}
}

func (p *AttributionPoller) processDue(ctx context.Context) {
	rows, err := p.repo.ClaimDue(ctx, p.now(), p.batchSize)
	if err != nil {
		p.logger.Error("fetch due attribution forwards", "error", err)
		return
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			return
		}
		p.deliver(ctx, row)
	}
}

func (p *AttributionPoller) deliver(ctx context.Context, row *model.AttributionForward) {
	log := p.logger.With("order_id", row.OrderID, "attempt", row.Attempts+1)

	sendErr := p.client.SendOrder(ctx, row.Payload)
	if sendErr == nil {
		if err := p.repo.MarkSent(ctx, row.ID); err != nil {
			log.Error("mark attribution forward sent", "error", err)
			return
		}
		log.Info("attribution forward sent")
		return
	}

	dead := row.Attempts+1 >= p.maxAttempts
	next := p.now().Add(p.backoff(row.Attempts))
	if err := p.repo.RecordFailure(ctx, row.ID, sendErr.Error(), next, dead); err != nil {
		log.Error("record attribution forward failure", "error", err)
		return
	}

	if dead {
		log.Error("attribution forward abandoned", "error", sendErr)
		return
	}
	log.Warn("attribution forward failed, will retry", "error", sendErr, "next_attempt_at", next)
}

// backoff returns base * 2^attempts capped at maxBackoff.
func (p *AttributionPoller) backoff(attempts int) time.Duration {
	d := p.baseBackoff
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= p.maxBackoff {
			return p.maxBackoff
		}
	}
	if d > p.maxBackoff {
		return p.maxBackoff
	}
	return d
}
