package commands

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=reconciler.go -destination=../../../tests/mock/commands/reconciler_mock.go -package=commands

// Stored in payment_callbacks.result.
const (
	resultApplied      = "applied"
	resultDuplicate    = "duplicate"
	resultRaceLost     = "race_lost"
	resultAmbiguous    = "ambiguous"
	resultUnresolvable = "unresolvable"
	resultRejected     = "rejected"
)

type ReconcileResult struct {
	HoldID  uuid.UUID
	Status  hold.Status
	Outcome CallbackOutcome
	Applied bool
}

// CallbackReconciler maps a gateway notification onto exactly one hold transition.
type CallbackReconciler interface {
	Handle(ctx context.Context, provider string, q url.Values) (*ReconcileResult, error)
}

type reconcilerImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	machine *Machine
	parsers map[string]CallbackParser
}

func NewCallbackReconciler(uow shared.UnitOfWork, clk clock.Clock, machine *Machine, parsers []CallbackParser) CallbackReconciler {
	byName := make(map[string]CallbackParser, len(parsers))
	for _, p := range parsers {
		byName[p.Provider()] = p
	}
	return &reconcilerImpl{
		uow:     uow,
		clock:   clk,
		machine: machine,
		parsers: byName,
	}
}

func (r *reconcilerImpl) Handle(ctx context.Context, provider string, q url.Values) (*ReconcileResult, error) {
	parser, ok := r.parsers[provider]
	if !ok {
		return nil, errs.ErrUnknownProvider
	}

	cb, err := parser.Parse(q)
	if err != nil {
		r.record(ctx, Callback{Provider: provider, Outcome: OutcomeUnknown, Message: err.Error()}, nil, q, resultRejected)
		slog.Warn("rejected payment callback", "provider", provider, "error", err)
		return nil, err
	}
	cb.Provider = provider

	if cb.Outcome != OutcomeSuccess && cb.Outcome != OutcomeFailure {
		r.record(ctx, cb, cb.HoldID, q, resultAmbiguous)
		slog.Warn("ambiguous payment callback", "provider", provider, "external_ref", cb.ExternalRef)
		return nil, errs.ErrAmbiguousCallback
	}

	var (
		result   *ReconcileResult
		eff      effect
		outErr   error
		resolved *uuid.UUID
	)
	err = r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result, eff, outErr, resolved = nil, effect{}, nil, nil

		h, err := r.resolve(ctx, tx, cb)
		if err != nil {
			if errs.Is(err, errs.ErrHoldUnresolvable) {
				outErr = err
				return r.recordTx(ctx, tx, cb, nil, q, resultUnresolvable)
			}
			return err
		}
		id := h.ID()
		resolved = &id

		var label string
		eff, label, outErr, err = r.reconcile(ctx, tx, h, cb)
		if err != nil {
			return err
		}
		result = &ReconcileResult{
			HoldID:  h.ID(),
			Status:  h.Status(),
			Outcome: cb.Outcome,
			Applied: eff.transition.Applied,
		}
		return r.recordTx(ctx, tx, cb, resolved, q, label)
	})
	if err != nil {
		return nil, err
	}

	r.machine.afterCommit(ctx, eff)
	if outErr != nil {
		if errs.Is(outErr, errs.ErrHoldUnresolvable) {
			slog.Error("payment callback matches no hold",
				"provider", provider,
				"external_ref", cb.ExternalRef,
				"outcome", cb.Outcome)
		}
		return result, outErr
	}
	return result, nil
}

// resolve prefers the stored external reference and falls back to the hold id carried
// in the order token, accepting it only for a hold bound to the same provider.
func (r *reconcilerImpl) resolve(ctx context.Context, tx shared.Tx, cb Callback) (*hold.BookingHold, error) {
	if cb.ExternalRef != "" {
		h, err := tx.Holds().FindByExternalRefForUpdate(ctx, cb.ExternalRef)
		if err == nil {
			return h, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}
	if cb.HoldID == nil {
		return nil, errs.ErrHoldUnresolvable
	}

	h, err := lockHold(ctx, tx, *cb.HoldID)
	if err != nil {
		if errs.Is(err, errs.ErrHoldNotFound) {
			return nil, errs.ErrHoldUnresolvable
		}
		return nil, err
	}
	if h.Channel() != hold.GatewayChannel(cb.Provider) {
		return nil, errs.ErrHoldUnresolvable
	}
	return h, nil
}

// reconcile returns the transition effect, the callback label, and the error the
// caller should see once the transaction commits.
func (r *reconcilerImpl) reconcile(ctx context.Context, tx shared.Tx, h *hold.BookingHold, cb Callback) (effect, string, error, error) {
	if cb.Outcome == OutcomeFailure {
		eff, err := r.machine.applyLocked(ctx, tx, h, hold.EventDecline, cb.Message)
		if err != nil {
			return effect{}, "", nil, err
		}
		if !eff.transition.Applied {
			return eff, resultDuplicate, nil, nil
		}
		return eff, resultApplied, nil, nil
	}

	eff, err := r.machine.applyLocked(ctx, tx, h, hold.EventConfirm, "")
	if err != nil {
		return effect{}, "", nil, err
	}
	if eff.transition.Applied && !eff.transition.Superseded() {
		return eff, resultApplied, nil, nil
	}
	if h.Status() == hold.StatusConfirmed {
		return eff, resultDuplicate, nil, nil
	}

	// The gateway charged a hold that already closed. Keep it closed and give the money back.
	amount := h.AmountDue()
	h.RecordLateCharge(amount, r.clock.Now())
	queued, err := r.machine.cancellation.Release(ctx, tx, h, cb.PaymentID)
	if err != nil {
		return effect{}, "", nil, err
	}
	if err := tx.Holds().Update(ctx, h); err != nil {
		return effect{}, "", nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	eff.refundQueue = eff.refundQueue || queued
	slog.Warn("payment arrived after hold closed",
		"hold_id", h.ID(),
		"status", h.Status(),
		"amount", amount.Amount())
	return eff, resultRaceLost, errs.ErrHoldWindowClosed, nil
}

func (r *reconcilerImpl) recordTx(ctx context.Context, tx shared.Tx, cb Callback, holdID *uuid.UUID, q url.Values, result string) error {
	err := tx.Callbacks().Record(ctx, shared.CallbackRecord{
		Provider:    cb.Provider,
		ExternalRef: cb.ExternalRef,
		HoldID:      holdID,
		Outcome:     string(cb.Outcome),
		PaymentID:   cb.PaymentID,
		Message:     cb.Message,
		Result:      result,
		RawQuery:    q,
		ReceivedAt:  r.clock.Now(),
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

// record stores a callback that causes no transition in its own transaction.
func (r *reconcilerImpl) record(ctx context.Context, cb Callback, holdID *uuid.UUID, q url.Values, result string) {
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return r.recordTx(ctx, tx, cb, holdID, q, result)
	})
	if err != nil {
		slog.Error("failed to record payment callback", "provider", cb.Provider, "error", err)
	}
}
