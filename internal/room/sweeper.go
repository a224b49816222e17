package room

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultRoomTTL       = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Sweeper periodically removes idle rooms from a registry.
type Sweeper struct {
	registry *Registry
	ttl      time.Duration
	interval time.Duration
	logger   *log.Logger
}

// NewSweeper creates a sweeper using the registry's clock. Non-positive
// durations fall back to the defaults.
func NewSweeper(registry *Registry, ttl, interval time.Duration, logger *log.Logger) *Sweeper {
	if ttl <= 0 {
		ttl = DefaultRoomTTL
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		registry: registry,
		ttl:      ttl,
		interval: interval,
		logger:   logger.WithPrefix("sweeper"),
	}
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := s.registry.clock.NewTicker(s.interval, "sweeper")
	defer ticker.Stop()

	s.logger.Info("Sweeper started", "ttl", s.ttl, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper stopped")
			return nil
		case <-ticker.C:
			if n := s.SweepOnce(); n > 0 {
				s.logger.Info("Swept idle rooms", "removed", n, "remaining", s.registry.Len())
			}
		}
	}
}

// SweepOnce runs a single sweep.
func (s *Sweeper) SweepOnce() int {
	return s.registry.Sweep(s.ttl)
}
