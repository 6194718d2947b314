package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Refresher refreshes the weather snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*weather.Snapshot, error)
}

// Scheduler keeps the weather cache warm by refreshing it periodically.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
}

// New creates a new Scheduler. An interval <= 0 disables it.
func New(interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		logging.Info().Msg("scheduler: cache warm-up disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logging.Info().Dur("interval", s.interval).Msg("scheduler: cache warm-up started")
	return nil
}

func (s *Scheduler) run() {
	snap, err := s.refresher.Refresh(context.Background())
	if err != nil {
		logging.Warn().Err(err).Msg("scheduler: cache warm-up failed")
		return
	}
	logging.Debug().Int("cities", len(snap.Records)).Msg("scheduler: cache warmed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
