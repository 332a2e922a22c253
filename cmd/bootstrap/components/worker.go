package components

import (
	"context"
	"log/slog"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/commands"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/holdclock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(uow shared.UnitOfWork, machine *commands.Machine, clk clock.Clock, cfg config.Config) *worker.ExpirySweeper {
			return worker.NewExpirySweeper(uow, machine, clk, cfg)
		},
		func(uow shared.UnitOfWork, cancellation commands.CancellationService, clk clock.Clock, cfg config.Config) *worker.RefundWorker {
			return worker.NewRefundWorker(uow, cancellation, clk, cfg)
		},
	),
	fx.Invoke(registerBackground),
)

// registerBackground re-arms persisted hold clocks before the workers start polling.
func registerBackground(lc fx.Lifecycle, hc holdclock.HoldClock, machine *commands.Machine, sweeper *worker.ExpirySweeper, refunds *worker.RefundWorker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n, err := hc.Rearm(ctx, machine.OnExpire)
			if err != nil {
				return errs.Wrap(err, "rearm hold clocks")
			}
			slog.Info("hold clocks re-armed", "count", n)

			sweeper.Start()
			refunds.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sweepErr := sweeper.Stop(ctx)
			refundErr := refunds.Stop(ctx)
			if sweepErr != nil {
				return sweepErr
			}
			return refundErr
		},
	})
}
