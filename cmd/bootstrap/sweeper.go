package bootstrap

import (
	"context"

	"locker-booking/internal/pkg/config"
	"locker-booking/internal/sweeper"
	"locker-booking/internal/usecase/commands"

	"go.uber.org/fx"
)

var SweeperModule = fx.Module("sweeper",
	fx.Provide(
		NewSweeper,
	),
	fx.Invoke(registerSweeper),
)

func NewSweeper(cfg config.Config, cmds commands.BookingCommands) (*sweeper.Sweeper, error) {
	return sweeper.New(cmds, cfg.Sweep.Interval, cfg.Sweep.StartImmediate)
}

func registerSweeper(lc fx.Lifecycle, s *sweeper.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return s.Start()
		},
		OnStop: func(_ context.Context) error {
			return s.Stop()
		},
	})
}
