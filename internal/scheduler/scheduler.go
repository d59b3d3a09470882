package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

// Refresher is the part of the coordinator the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) (weather.Snapshot, error)
}

// Scheduler periodically refreshes the coordinator. Runs never overlap: a
// tick that fires while the previous refresh is still running is skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens one interval from now; the eager startup refresh is the
// caller's job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: refresh interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// RunOnce performs one scheduled refresh.
func (s *Scheduler) RunOnce() {
	s.logger.Debug("scheduler: running weather refresh job")

	_, err := s.refresher.Refresh(context.Background())
	switch {
	case err == nil:
		s.logger.Debug("scheduler: completed weather refresh job")
	case errors.Is(err, weather.ErrRefreshInProgress):
		s.logger.Debug("scheduler: refresh already running, skipping tick")
	default:
		// The coordinator already logged the failure.
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
