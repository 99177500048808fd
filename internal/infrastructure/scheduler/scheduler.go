package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/zentale/story-system/internal/core/ports"
)

// runTimeout bounds one sweep execution; a hung store call must not block the
// next scheduled run forever.
const runTimeout = 10 * time.Minute

// Scheduler runs the credit sweep on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	sweep ports.SweepService
	spec  string
	log   zerolog.Logger
}

// New creates a Scheduler that triggers sweep per the cron spec
// (standard 5-field syntax, e.g. "0 0 1 * *").
func New(spec string, sweep ports.SweepService, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger)))
	return &Scheduler{cron: c, sweep: sweep, spec: spec, log: log}
}

// Start registers the sweep job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("schedule", s.spec).Msg("credit sweep scheduled")
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunNow triggers one sweep immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (*ports.SweepSummary, error) {
	return s.sweep.Run(ctx, time.Now())
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := s.sweep.Run(ctx, time.Now()); err != nil {
		s.log.Error().Err(err).Msg("scheduled credit sweep failed")
	}
}
