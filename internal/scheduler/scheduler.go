// Package scheduler runs the background jobs of the link lifecycle: the
// expiration sweeper and the hourly/daily click counter resets. The
// scheduler is an explicitly constructed component with a start/stop
// lifecycle; job bodies are exported so tests can trigger them synchronously
// instead of waiting on wall-clock intervals.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dkolesnikov/linkcut/internal/metrics"
)

const (
	defaultSweepInterval       = 24 * time.Hour
	defaultHourlyResetInterval = time.Hour
	defaultDailyResetInterval  = 24 * time.Hour
)

// JobsRepository defines the bulk storage operations the jobs run against.
type JobsRepository interface {
	// DeactivateExpired flips every active link past its expiry to inactive
	// and stale as one bulk update, returning the affected count.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)

	// ResetHourlyClicks zeroes the hourly counter on all click stats rows.
	ResetHourlyClicks(ctx context.Context) (int64, error)

	// ResetDailyClicks zeroes the daily counter on all click stats rows.
	ResetDailyClicks(ctx context.Context) (int64, error)
}

// Intervals configures how often each job fires. Zero values fall back to
// the defaults (sweep 24h, hourly reset 1h, daily reset 24h).
type Intervals struct {
	Sweep       time.Duration
	HourlyReset time.Duration
	DailyReset  time.Duration
}

func (i *Intervals) setDefaults() {
	if i.Sweep <= 0 {
		i.Sweep = defaultSweepInterval
	}
	if i.HourlyReset <= 0 {
		i.HourlyReset = defaultHourlyResetInterval
	}
	if i.DailyReset <= 0 {
		i.DailyReset = defaultDailyResetInterval
	}
}

// Scheduler owns one ticker goroutine per job. Job failures are logged and
// left for the next tick; they never stop the scheduler.
type Scheduler struct {
	repo      JobsRepository
	logger    *slog.Logger
	intervals Intervals

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(repo JobsRepository, logger *slog.Logger, intervals Intervals) *Scheduler {
	intervals.setDefaults()

	return &Scheduler{
		repo:      repo,
		logger:    logger,
		intervals: intervals,
	}
}

// Start launches the job goroutines. They stop when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.runJob(ctx, "sweep_expired", s.intervals.Sweep, s.SweepExpired)
	s.runJob(ctx, "reset_hourly_clicks", s.intervals.HourlyReset, s.ResetHourly)
	s.runJob(ctx, "reset_daily_clicks", s.intervals.DailyReset, s.ResetDaily)
}

// Stop cancels the job goroutines and waits for them to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, name string, interval time.Duration, job func(context.Context) (int64, error)) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := job(ctx); err != nil {
					s.logger.Error("scheduled job failed",
						slog.String("job", name),
						slog.Any("err", err),
					)
				}
			}
		}
	}()
}

// SweepExpired deactivates every link whose expiry has passed, marking it
// stale. Re-running with no newly expired links changes nothing.
func (s *Scheduler) SweepExpired(ctx context.Context) (int64, error) {
	const op = "scheduler.Scheduler.SweepExpired"

	count, err := s.repo.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("%s: failed to deactivate expired links: %w", op, err)
	}

	metrics.LinksExpired.Add(float64(count))
	s.logger.Info("expired links deactivated", slog.Int64("count", count))

	return count, nil
}

// ResetHourly zeroes the hourly click counter on all links.
func (s *Scheduler) ResetHourly(ctx context.Context) (int64, error) {
	const op = "scheduler.Scheduler.ResetHourly"

	count, err := s.repo.ResetHourlyClicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to reset hourly clicks: %w", op, err)
	}

	metrics.ClicksReset.WithLabelValues("hourly").Add(float64(count))
	s.logger.Info("hourly clicks reset", slog.Int64("count", count))

	return count, nil
}

// ResetDaily zeroes the daily click counter on all links.
func (s *Scheduler) ResetDaily(ctx context.Context) (int64, error) {
	const op = "scheduler.Scheduler.ResetDaily"

	count, err := s.repo.ResetDailyClicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to reset daily clicks: %w", op, err)
	}

	metrics.ClicksReset.WithLabelValues("daily").Add(float64(count))
	s.logger.Info("daily clicks reset", slog.Int64("count", count))

	return count, nil
}
