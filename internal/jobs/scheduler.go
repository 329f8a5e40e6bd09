package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/postflow/internal/logger"
	"github.com/robfig/cron/v3"
)

// PostScheduler owns the recurring publish job. Ticks never overlap.
type PostScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	job      cron.Job
	engine   *cron.Cron
}

func NewPostScheduler(interval time.Duration, job cron.Job) *PostScheduler {
	return &PostScheduler{
		interval: interval,
		job:      job,
	}
}

// Start is a no-op when the scheduler is already running.
func (s *PostScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != nil {
		return nil
	}
	if s.interval <= 0 {
		return fmt.Errorf("invalid scheduler interval %s", s.interval)
	}

	cronLog := logger.CronLogger(slog.Default())
	engine := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := engine.AddJob(fmt.Sprintf("@every %s", s.interval), s.job); err != nil {
		return fmt.Errorf("registering publish job: %w", err)
	}

	engine.Start()
	s.engine = engine
	slog.Info("post scheduler started", "interval", s.interval.String())
	return nil
}

// Stop cancels future ticks and waits for the running one, or for ctx.
// Stopping a scheduler that is not running does nothing.
func (s *PostScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	engine := s.engine
	s.engine = nil
	s.mu.Unlock()

	if engine == nil {
		return nil
	}

	done := engine.Stop()
	select {
	case <-done.Done():
		slog.Info("post scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PostScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil
}
