package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

const maxRefundBackoff = time.Hour

type RefundIssuer interface {
	Issue(ctx context.Context, holdID uuid.UUID) (*hold.Refund, error)
}

// RefundWorker retries refunds left PENDING after their transition committed.
type RefundWorker struct {
	uow         shared.UnitOfWork
	issuer      RefundIssuer
	clock       clock.Clock
	base        time.Duration
	maxAttempts int
	batchSize   int
	*loop
}

func NewRefundWorker(uow shared.UnitOfWork, issuer RefundIssuer, clk clock.Clock, cfg config.Config) *RefundWorker {
	w := &RefundWorker{
		uow:         uow,
		issuer:      issuer,
		clock:       clk,
		base:        cfg.Worker.RefundInterval,
		maxAttempts: cfg.Worker.RefundMaxAttempts,
		batchSize:   cfg.Worker.RefundBatchSize,
	}
	w.loop = newLoop("refund-retry", cfg.Worker.RefundInterval, func(ctx context.Context) {
		if _, err := w.RunOnce(ctx); err != nil {
			slog.Error("refund retry failed", "error", err)
		}
	})
	return w
}

// RunOnce picks a batch of due jobs and issues each. The issuer leases a job before
// calling the provider, so a job another caller is already issuing is skipped.
// It returns how many refunds completed.
func (w *RefundWorker) RunOnce(ctx context.Context) (int, error) {
	var jobs []shared.RefundJob
	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		due, err := tx.Refunds().ClaimDue(ctx, w.clock.Now(), w.batchSize)
		if err != nil {
			return err
		}
		jobs = due
		return nil
	})
	if err != nil {
		return 0, errs.Wrap(err, "claim refund jobs")
	}

	completed := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		refund, err := w.issuer.Issue(ctx, job.HoldID)
		if errs.Is(err, errs.ErrRefundInFlight) {
			slog.Debug("refund in flight elsewhere", "hold_id", job.HoldID)
			continue
		}
		if err == nil && refund != nil && refund.Status() == hold.RefundCompleted {
			completed++
			continue
		}
		if err == nil {
			err = errs.New("refund still pending")
		}
		w.fail(ctx, job, err)
	}
	return completed, nil
}

func (w *RefundWorker) fail(ctx context.Context, job shared.RefundJob, cause error) {
	attempt := job.Attempts + 1
	giveUp := attempt >= w.maxAttempts

	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Refunds().MarkFailed(ctx, job.ID, cause.Error(), w.nextRun(attempt), giveUp)
	})
	if err != nil {
		slog.Error("failed to record refund failure", "hold_id", job.HoldID, "error", err)
		return
	}

	if giveUp {
		slog.Error("refund abandoned after max attempts",
			"hold_id", job.HoldID,
			"attempts", attempt,
			"amount", job.Amount,
			"error", cause)
		return
	}
	slog.Warn("refund attempt failed", "hold_id", job.HoldID, "attempt", attempt, "error", cause)
}

// nextRun doubles the base interval per attempt, capped at maxRefundBackoff.
func (w *RefundWorker) nextRun(attempt int) time.Time {
	d := w.base
	for i := 1; i < attempt && d < maxRefundBackoff; i++ {
		d *= 2
	}
	return w.clock.Now().Add(min(d, maxRefundBackoff))
}
