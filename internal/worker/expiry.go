package worker

import (
	"context"
	"log/slog"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

const sweepBatchSize = 100

type Expirer interface {
	ExpireOverdue(ctx context.Context, holdID uuid.UUID) error
}

// ExpirySweeper expires pending holds whose timer was lost, e.g. across a crash
// between commit and arming.
type ExpirySweeper struct {
	uow     shared.UnitOfWork
	expirer Expirer
	clock   clock.Clock
	*loop
}

func NewExpirySweeper(uow shared.UnitOfWork, expirer Expirer, clk clock.Clock, cfg config.Config) *ExpirySweeper {
	w := &ExpirySweeper{uow: uow, expirer: expirer, clock: clk}
	w.loop = newLoop("expiry-sweeper", cfg.Hold.SweepInterval, func(ctx context.Context) {
		if _, err := w.RunOnce(ctx); err != nil {
			slog.Error("expiry sweep failed", "error", err)
		}
	})
	return w
}

// RunOnce expires one batch and returns how many holds it expired.
func (w *ExpirySweeper) RunOnce(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Holds().ListOverdue(ctx, w.clock.Now(), sweepBatchSize)
		return err
	})
	if err != nil {
		return 0, errs.Wrap(err, "list overdue holds")
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err := w.expirer.ExpireOverdue(ctx, id); err != nil {
			slog.Warn("sweeper could not expire hold", "hold_id", id, "error", err)
			continue
		}
		expired++
	}
	if expired > 0 {
		slog.Info("expired overdue holds", "count", expired)
	}
	return expired, nil
}
