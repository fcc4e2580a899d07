// Package scheduler runs the periodic cache maintenance job.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tyson-swetnam/raws-mcp/internal/cache"
)

// Sweeper is the cache-maintenance surface the scheduler drives.
type Sweeper interface {
	SweepExpired() int
	Stats() map[string]cache.Stats
}

// Scheduler owns the background sweep. Expiry is already enforced on every
// cache read; the sweep only reclaims memory held by entries nothing reads
// anymore.
type Scheduler struct {
	cron    *gocron.Scheduler
	sweeper Sweeper
	logger  *slog.Logger
}

// New creates a Scheduler sweeping at the given interval.
func New(sweeper Sweeper, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    gocron.NewScheduler(time.UTC),
		sweeper: sweeper,
		logger:  logger,
	}

	if _, err := s.cron.Every(interval).Do(s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the sweep loop in the background.
func (s *Scheduler) Start() {
	s.cron.StartAsync()
	s.logger.Info("cache sweep scheduled")
}

// Stop halts the sweep loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) sweep() {
	removed := s.sweeper.SweepExpired()
	if removed > 0 {
		s.logger.Debug("cache sweep complete", "removed", removed)
	}
	for category, stats := range s.sweeper.Stats() {
		s.logger.Debug("cache occupancy",
			"category", category, "active", stats.Active, "hits", stats.Hits)
	}
}
