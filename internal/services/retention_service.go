package services

import (
	"context"
	"github.com/rs/zerolog"
	"time"
)

type RetentionStore interface {
	PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeSensorReadingsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type RetentionService struct {
	store           RetentionStore
	logRetention    time.Duration
	sensorRetention time.Duration
	interval        time.Duration
	now             func() time.Time
	logger          zerolog.Logger
}

func NewRetentionService(store RetentionStore, logRetention, sensorRetention, interval time.Duration, logger zerolog.Logger) *RetentionService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionService{
		store:           store,
		logRetention:    logRetention,
		sensorRetention: sensorRetention,
		interval:        interval,
		now:             time.Now,
		logger:          logger,
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *RetentionService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			s.logger.Info().Msg("Retention sweeper stopped")
			return
		}
	}
}

func (s *RetentionService) Sweep(ctx context.Context) {
	now := s.now()

	if s.logRetention > 0 {
		deleted, err := s.store.PurgeLogsBefore(ctx, now.Add(-s.logRetention))
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to purge device logs")
		} else if deleted > 0 {
			s.logger.Info().Int64("deleted", deleted).Msg("Purged expired device logs")
		}
	}

	if s.sensorRetention > 0 {
		deleted, err := s.store.PurgeSensorReadingsBefore(ctx, now.Add(-s.sensorRetention))
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to purge sensor readings")
		} else if deleted > 0 {
			s.logger.Info().Int64("deleted", deleted).Msg("Purged expired sensor readings")
		}
	}
}
