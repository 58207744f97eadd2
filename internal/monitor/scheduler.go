package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler re-runs Warm on a cron schedule so cached snapshots do not go
// stale in a long-running process. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	service *Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler parses spec (standard five-field cron or an @descriptor) and
// registers the refresh job. Each run is bounded by timeout.
func NewScheduler(spec string, service *Service, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: service,
		timeout: timeout,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule refresh %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("refresh scheduler started", "next_run", s.cron.Entries()[0].Next)
}

// Stop halts the schedule and waits for a running refresh to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.service.Warm(ctx); err != nil {
		s.logger.Warn("scheduled refresh incomplete", "error", err)
	}
}
