package relay

import (
	"context"
	"github.com/rs/zerolog"
)

const (
	laneLogs      = "logs"
	laneSensors   = "sensors"
	laneMedicines = "medicines"
	laneSettings  = "settings"
)

// lane serializes store work for one concern so writes commit in arrival
// order without holding up the loop.
type lane struct {
	name   string
	jobs   chan func(ctx context.Context)
	logger zerolog.Logger
}

func newLane(name string, size int, logger zerolog.Logger) *lane {
	return &lane{
		name:   name,
		jobs:   make(chan func(ctx context.Context), size),
		logger: logger,
	}
}

func (l *lane) submit(job func(ctx context.Context)) bool {
	select {
	case l.jobs <- job:
		return true
	default:
		l.logger.Warn().Str("lane", l.name).Msg("Store lane full, dropping job")
		return false
	}
}

func (l *lane) run(ctx context.Context) {
	for {
		select {
		case job := <-l.jobs:
			job(ctx)
		case <-ctx.Done():
			return
		}
	}
}
