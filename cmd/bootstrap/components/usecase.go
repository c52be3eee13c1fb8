package components

import (
	"locker-booking/internal/pkg/clock"
	"locker-booking/internal/pkg/config"
	"locker-booking/internal/usecase/commands"
	"locker-booking/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		func(repo commands.BookingRepository, catalog commands.VenueCatalog, clk clock.Clock, cfg config.Config) commands.BookingCommands {
			return commands.NewBookingCommands(repo, catalog, clk, cfg.Sweep.PendingMaxAge)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)
