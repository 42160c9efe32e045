// Package scheduler runs the periodic model retrain.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NoahAizen44/SmarterTips/schema"
	"github.com/go-co-op/gocron/v2"
)

// RetrainFunc runs one retrain batch.
type RetrainFunc func(ctx context.Context) (schema.RetrainSummary, error)

// Scheduler retrains every interval, starting immediately. Overlapping runs
// are skipped rather than queued.
type Scheduler struct {
	sched  gocron.Scheduler
	logger *slog.Logger
}

// New registers the retrain job. Call Run to start it.
func New(ctx context.Context, interval time.Duration, retrain RetrainFunc, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive (received %s)", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{sched: sched, logger: logger}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.runOnce(ctx, retrain) }),
		gocron.WithName("retrain"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register retrain job: %w", err)
	}
	return s, nil
}

func (s *Scheduler) runOnce(ctx context.Context, retrain RetrainFunc) {
	start := time.Now()
	s.logger.Info("scheduled retrain starting")
	summary, err := retrain(ctx)
	if err != nil {
		s.logger.Warn("scheduled retrain failed", "error", err)
		return
	}
	s.logger.Info("scheduled retrain finished",
		"run_uuid", summary.RunUUID,
		"trained", summary.Trained,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"elapsed", time.Since(start))
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.sched.Start()
	<-ctx.Done()
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}
