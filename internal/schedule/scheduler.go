package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one retention cycle.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule. Cycles never overlap: a tick that
// arrives while the previous cycle is still running is skipped.
type Scheduler struct {
	expr   string
	job    Job
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	cycles  int
}

// New validates expr (standard 5-field cron or a descriptor such as "@daily")
// and builds a Scheduler. If logger is nil, a no-op logger is used.
func New(expr string, job Job, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	if _, err := cron.ParseStandard(expr); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		expr:   expr,
		job:    job,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}, nil
}

// Run starts the schedule and blocks until ctx is cancelled, then waits for a
// cycle in progress to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.expr, func() { s.runCycle(ctx) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule retention run: %w", err)
	}
	s.cron.Start()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("retention scheduler started", zap.String("schedule", s.expr), zap.Timep("next_run", s.NextRun()))

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done() // wait for running jobs to finish

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.logger.Info("retention scheduler stopped", zap.Int("cycles", s.Cycles()))
	return nil
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.cycles++
	cycle := s.cycles
	s.mu.Unlock()

	s.logger.Info("starting scheduled retention run", zap.Int("cycle", cycle))
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled retention run failed", zap.Int("cycle", cycle), zap.Error(err))
		return
	}
	s.logger.Info("scheduled retention run completed",
		zap.Int("cycle", cycle),
		zap.Duration("elapsed", time.Since(start)),
		zap.Timep("next_run", s.NextRun()))
}

// Cycles returns how many cycles have started.
func (s *Scheduler) Cycles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// NextRun returns the next scheduled run, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return nil
	}
	next := entries[0].Next
	return &next
}

// cronLogger adapts zap to cron's logger interface.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
