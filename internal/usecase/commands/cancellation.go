package commands

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

// CancellationService returns captured funds for holds that closed without a booking.
type CancellationService interface {
	// Release records a PENDING refund on h and queues it. It runs inside the
	// transition's transaction and reports whether a refund was queued.
	Release(ctx context.Context, tx shared.Tx, h *hold.BookingHold, paymentID string) (bool, error)
	// Issue moves the money for a queued refund and marks it COMPLETED. Calling it
	// again after completion returns the completed refund. A gateway refund is leased
	// before the provider call; a caller that finds the lease held gets
	// errs.ErrRefundInFlight with the pending refund. A failed provider call keeps the
	// lease, so the refund worker retries it once the lease runs out.
	Issue(ctx context.Context, holdID uuid.UUID) (*hold.Refund, error)
}

type cancellationServiceImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	providers map[string]PaymentProvider
	lease     time.Duration
}

func NewCancellationService(uow shared.UnitOfWork, clk clock.Clock, providers []PaymentProvider, cfg config.Config) CancellationService {
	byName := make(map[string]PaymentProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &cancellationServiceImpl{
		uow:       uow,
		clock:     clk,
		providers: byName,
		lease:     cfg.Gateway.HTTPTimeout + cfg.Worker.RefundInterval,
	}
}

func (s *cancellationServiceImpl) Release(ctx context.Context, tx shared.Tx, h *hold.BookingHold, paymentID string) (bool, error) {
	if !h.NeedsRefund() {
		return false, nil
	}

	now := s.clock.Now()
	refund, err := h.StartRefund(now)
	if err != nil {
		return false, errs.Mark(err, errs.ErrDomainValidation)
	}

	job := shared.RefundJob{
		HoldID:      h.ID(),
		UserID:      h.UserID(),
		Channel:     h.Channel().String(),
		ExternalRef: h.ExternalRef(),
		PaymentID:   paymentID,
		Amount:      refund.Amount().Amount(),
		RunAt:       now,
	}
	if err := tx.Refunds().Enqueue(ctx, job); err != nil {
		return false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	slog.Info("refund queued",
		"hold_id", h.ID(),
		"channel", job.Channel,
		"amount", job.Amount)
	return true, nil
}

func (s *cancellationServiceImpl) Issue(ctx context.Context, holdID uuid.UUID) (*hold.Refund, error) {
	var (
		refund   *hold.Refund
		external *shared.RefundJob
		inFlight bool
	)
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		external, inFlight = nil, false
		h, err := lockHold(ctx, tx, holdID)
		if err != nil {
			return err
		}
		refund = h.Refund()
		if refund == nil || refund.Status() == hold.RefundCompleted {
			return nil
		}

		job, err := tx.Refunds().GetByHoldForUpdate(ctx, holdID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if h.Channel().IsGateway() {
			now := s.clock.Now()
			if job.RunAt.After(now) {
				inFlight = true
				return nil
			}
			if err := tx.Refunds().Lease(ctx, job.ID, now.Add(s.lease)); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			external = job
			return nil
		}

		if err := tx.Wallets().Refund(ctx, h.UserID(), h.ID(), refund.Amount().Amount()); err != nil {
			return errs.Mark(err, errs.ErrRefundFailed)
		}
		refund, err = s.complete(ctx, tx, h, job)
		return err
	})
	if err != nil {
		return nil, err
	}
	if inFlight {
		return refund, errs.ErrRefundInFlight
	}
	if external == nil {
		return refund, nil
	}

	if err := s.refundExternally(ctx, external); err != nil {
		return refund, err
	}

	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, err := lockHold(ctx, tx, holdID)
		if err != nil {
			return err
		}
		refund = h.Refund()
		if refund == nil || refund.Status() == hold.RefundCompleted {
			return nil
		}
		job, err := tx.Refunds().GetByHoldForUpdate(ctx, holdID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		refund, err = s.complete(ctx, tx, h, job)
		return err
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

func (s *cancellationServiceImpl) complete(ctx context.Context, tx shared.Tx, h *hold.BookingHold, job *shared.RefundJob) (*hold.Refund, error) {
	if err := h.CompleteRefund(s.clock.Now()); err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	if err := tx.Holds().Update(ctx, h); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Refunds().MarkDone(ctx, job.ID); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	slog.Info("refund completed", "hold_id", h.ID(), "amount", job.Amount)
	return h.Refund(), nil
}

func (s *cancellationServiceImpl) refundExternally(ctx context.Context, job *shared.RefundJob) error {
	channel, err := hold.ParseChannel(job.Channel)
	if err != nil {
		return errs.Mark(err, errs.ErrRefundFailed)
	}
	provider, ok := s.providers[channel.Provider()]
	if !ok {
		return errs.Mark(errs.ErrUnknownProvider, errs.ErrRefundFailed)
	}

	err = provider.Refund(ctx, RefundOrder{
		OrderID:   job.ExternalRef,
		PaymentID: job.PaymentID,
		HoldID:    job.HoldID,
		Amount:    job.Amount,
	})
	if err != nil {
		return errs.Mark(err, errs.ErrRefundFailed)
	}
	return nil
}
