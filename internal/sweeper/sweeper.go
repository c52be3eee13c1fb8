package sweeper

import (
	"context"
	"log/slog"
	"time"

	"locker-booking/internal/pkg/errs"
	"locker-booking/internal/usecase/commands"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically reconciles booking statuses against the clock:
// elapsed active bookings are completed and stale pending ones cancelled.
// Singleton mode keeps runs from overlapping when a sweep outlasts the
// interval.
type Sweeper struct {
	commands  commands.BookingCommands
	scheduler gocron.Scheduler
	interval  time.Duration
	immediate bool
}

func New(cmds commands.BookingCommands, interval time.Duration, startImmediate bool) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, errs.Wrap(err, "failed to create scheduler")
	}
	return &Sweeper{
		commands:  cmds,
		scheduler: scheduler,
		interval:  interval,
		immediate: startImmediate,
	}, nil
}

// Start registers the sweep job and begins the schedule. It returns once the
// scheduler is running; sweeps execute on the scheduler's goroutines.
func (s *Sweeper) Start() error {
	opts := []gocron.JobOption{
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if s.immediate {
		opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.runOnce),
		opts...,
	)
	if err != nil {
		return errs.Wrap(err, "failed to register sweep job")
	}

	s.scheduler.Start()
	slog.Info("expiry sweeper started", "interval", s.interval)
	return nil
}

// Stop shuts the scheduler down, waiting for an in-flight sweep to finish.
func (s *Sweeper) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return errs.Wrap(err, "failed to shut down sweeper")
	}
	slog.Info("expiry sweeper stopped")
	return nil
}

func (s *Sweeper) runOnce() {
	result, err := s.commands.RunExpirySweep(context.Background())
	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
		return
	}
	if result.Completed > 0 || result.Cancelled > 0 {
		slog.Info("expiry sweep finished",
			"completed", result.Completed,
			"cancelled", result.Cancelled,
		)
	}
}
