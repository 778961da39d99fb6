// Package worker runs background maintenance for the service.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/metrics"
)

// Janitor periodically prunes expired idempotency records so replay storage
// stays bounded by the key TTL.
type Janitor struct {
	repo     idempotency.Repository
	interval time.Duration
	log      zerolog.Logger
	stopChan chan struct{}
}

// NewJanitor creates the idempotency janitor.
func NewJanitor(repo idempotency.Repository, interval time.Duration, log zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Janitor{
		repo:     repo,
		interval: interval,
		log:      log.With().Str("component", "janitor").Logger(),
		stopChan: make(chan struct{}),
	}
}

// Start begins the prune loop. It runs one sweep immediately so restarts
// clean up promptly, then ticks at the configured interval.
func (j *Janitor) Start(ctx context.Context) {
	j.log.Info().Dur("interval", j.interval).Msg("janitor started")

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info().Msg("janitor stopped by context")
			return
		case <-j.stopChan:
			j.log.Info().Msg("janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// Stop gracefully stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopChan)
}

func (j *Janitor) sweep(ctx context.Context) {
	deleted, err := j.repo.DeleteExpired(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("failed to prune idempotency records")
		return
	}
	if deleted > 0 {
		metrics.JanitorDeletionsTotal.Add(float64(deleted))
		j.log.Info().Int64("deleted", deleted).Msg("pruned expired idempotency records")
	}
}
