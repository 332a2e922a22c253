package components

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/holdclock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(clk clock.Clock, cfg config.Config) *hold.Services {
		return &hold.Services{
			Clock:    clk,
			Window:   cfg.Hold.Window,
			MaxSlots: cfg.Hold.MaxSlots,
		}
	},
	fx.Annotate(
		holdclock.NewService,
		fx.As(new(holdclock.HoldClock)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCancellationService,
		commands.NewHoldMachine,
		commands.NewGatewayAdapter,
		commands.NewPaymentUseCase,
		commands.NewHoldUseCase,
		commands.NewWalletUseCase,
		commands.NewCallbackReconciler,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		// reads expire overdue holds through the machine
		func(repo queries.HoldViewRepo, machine *commands.Machine, clk clock.Clock) queries.HoldQueries {
			return queries.NewHoldQueries(repo, machine, clk)
		},
		queries.NewWalletQueries,
		queries.NewCallbackQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
