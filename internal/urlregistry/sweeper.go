package urlregistry

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Sweeper drives Registry's TTL eviction on a fixed schedule, the same
// robfig/cron wiring the teacher uses for its own recurring jobs (see
// internal/scheduler.Scheduler), just pointed at a single func instead of
// a database-backed job table.
type Sweeper struct {
	registry *Registry
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSweeper builds a Sweeper for registry. The interval argument is not
// stored or used: the schedule that runs is the robfig/cron descriptor
// passed to Start (for example "@every 1m0s", spec.md default: 60s).
func NewSweeper(registry *Registry, interval string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		registry: registry,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		logger:   logger,
	}
}

// Start schedules the sweep and begins running it in the background.
func (s *Sweeper) Start(intervalSchedule string) error {
	_, err := s.cron.AddFunc(intervalSchedule, func() {
		removed := s.registry.sweep()
		if removed > 0 {
			s.logger.Debug("swept expired url registry entries", slog.Int("removed", removed))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the sweeper, waiting for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
