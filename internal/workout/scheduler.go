package workout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/coachplan/internal/errors"
	"github.com/robfig/cron"
)

// DefaultReanalyzeSpec runs the background re-analysis once an hour.
const DefaultReanalyzeSpec = "@every 1h"

// Scheduler periodically refreshes the stored insights of every plan with logs.
type Scheduler struct {
	service  *Service
	logger   *slog.Logger
	schedule cron.Schedule
	spec     string
	running  atomic.Bool

	mu      sync.Mutex
	stopped bool
	jobs    sync.WaitGroup
}

// NewScheduler parses spec, a cron expression or descriptor such as "@every 1h".
func NewScheduler(service *Service, logger *slog.Logger, spec string) (*Scheduler, error) {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{ //nolint:exhaustruct // zero values are ready to use.
		service:  service,
		logger:   logger,
		schedule: schedule,
		spec:     spec,
	}, nil
}

// Run blocks until ctx is done and waits for an in-flight re-analysis before returning.
func (s *Scheduler) Run(ctx context.Context) {
	c := cron.New()
	c.Schedule(s.schedule, cron.FuncJob(func() { s.reanalyze(ctx) }))
	c.Start()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "started re-analysis scheduler", slog.String("spec", s.spec))

	<-ctx.Done()
	c.Stop()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.jobs.Wait()
	s.logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelInfo, "stopped re-analysis scheduler")
}

func (s *Scheduler) reanalyze(ctx context.Context) {
	s.mu.Lock()
	if s.stopped || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.jobs.Add(1)
	s.mu.Unlock()
	defer s.jobs.Done()

	// A slow run must not overlap the next tick.
	if !s.running.CompareAndSwap(false, true) {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "skipping re-analysis, previous run still in progress")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	analyzed, err := s.service.ReanalyzeAll(ctx)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "re-analysis failed",
			slog.Int("analyzed", analyzed), errors.SlogError(err))
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "re-analysis finished",
		slog.Int("analyzed", analyzed), slog.Duration("duration", time.Since(start)))
}
