package commands

import (
	"context"
	"log/slog"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/holdclock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

// HoldMachine is the only writer of hold status.
type HoldMachine interface {
	// Apply delivers event to the hold. Events against a terminal hold come back
	// with Applied=false and no error.
	Apply(ctx context.Context, holdID uuid.UUID, event hold.Event, reason string) (hold.Transition, error)
	// ExpireOverdue applies EXPIRE only when the hold's deadline has passed.
	ExpireOverdue(ctx context.Context, holdID uuid.UUID) error
	// OnExpire is the callback armed on the hold clock.
	OnExpire(ctx context.Context, holdID uuid.UUID)
}

// Machine implements HoldMachine. Other use cases in this package reuse its
// locked apply so a payment and its CONFIRM share one transaction.
type Machine struct {
	uow          shared.UnitOfWork
	clock        clock.Clock
	holdClock    holdclock.HoldClock
	cancellation CancellationService
}

func NewHoldMachine(uow shared.UnitOfWork, clk clock.Clock, hc holdclock.HoldClock, cancellation CancellationService) *Machine {
	return &Machine{
		uow:          uow,
		clock:        clk,
		holdClock:    hc,
		cancellation: cancellation,
	}
}

// effect is what a committed transition still owes outside the transaction.
type effect struct {
	holdID      uuid.UUID
	transition  hold.Transition
	refundQueue bool
	// stopClock clears a clock left behind by an earlier failed Cancel.
	stopClock bool
}

func (m *Machine) Apply(ctx context.Context, holdID uuid.UUID, event hold.Event, reason string) (hold.Transition, error) {
	if !event.IsValid() {
		return hold.Transition{}, errs.Mark(hold.ErrInvalidEvent, errs.ErrDomainValidation)
	}

	var eff effect
	err := m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, err := lockHold(ctx, tx, holdID)
		if err != nil {
			return err
		}
		eff, err = m.applyLocked(ctx, tx, h, event, reason)
		return err
	})
	if err != nil {
		return hold.Transition{}, err
	}

	m.afterCommit(ctx, eff)
	return eff.transition, nil
}

func (m *Machine) ExpireOverdue(ctx context.Context, holdID uuid.UUID) error {
	var eff effect
	err := m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, err := lockHold(ctx, tx, holdID)
		if err != nil {
			return err
		}
		if !h.IsOverdue(m.clock.Now()) {
			eff = effect{holdID: holdID, stopClock: h.Status().IsTerminal()}
			return nil
		}
		eff, err = m.applyLocked(ctx, tx, h, hold.EventExpire, "")
		return err
	})
	if err != nil {
		return err
	}

	m.afterCommit(ctx, eff)
	return nil
}

func (m *Machine) OnExpire(ctx context.Context, holdID uuid.UUID) {
	if err := m.ExpireOverdue(ctx, holdID); err != nil {
		slog.Error("hold expiry failed", "hold_id", holdID, "error", err)
	}
}

// applyLocked runs the transition and its in-transaction side effects. The caller holds
// the row lock on h.
func (m *Machine) applyLocked(ctx context.Context, tx shared.Tx, h *hold.BookingHold, event hold.Event, reason string) (effect, error) {
	tr, err := h.Apply(event, m.clock.Now())
	if err != nil {
		return effect{}, errs.Mark(err, errs.ErrDomainValidation)
	}
	eff := effect{holdID: h.ID(), transition: tr}

	if !tr.Applied {
		slog.Info("event ignored on terminal hold",
			"hold_id", h.ID(),
			"event", event,
			"status", h.Status())
		return eff, nil
	}
	if tr.Superseded() {
		slog.Info("hold deadline passed before event, expiring instead",
			"hold_id", h.ID(),
			"requested", tr.Requested)
	}
	if tr.Event == hold.EventDecline {
		h.SetDeclineReason(reason)
	}

	switch {
	case tr.RetainsSlots():
		err = tx.Slots().Retain(ctx, h.ID())
	case tr.ReleasesSlots():
		err = tx.Slots().Release(ctx, h.ID())
	}
	if err != nil {
		return effect{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	eff.refundQueue, err = m.cancellation.Release(ctx, tx, h, "")
	if err != nil {
		return effect{}, err
	}

	if err := tx.Holds().Update(ctx, h); err != nil {
		return effect{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Records().Delete(ctx, holdclock.PendingKey(h.ID())); err != nil {
		return effect{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	slog.Info("hold transitioned",
		"hold_id", h.ID(),
		"event", tr.Event,
		"from", tr.From,
		"to", tr.To)
	return eff, nil
}

// afterCommit stops the clock and attempts the queued refund. Failures here are left to
// the sweeper and the refund worker; the returned refund is nil in that case.
func (m *Machine) afterCommit(ctx context.Context, eff effect) *hold.Refund {
	if eff.transition.Applied || eff.stopClock {
		if err := m.holdClock.Cancel(ctx, eff.holdID); err != nil {
			slog.Warn("failed to cancel hold clock", "hold_id", eff.holdID, "error", err)
		}
	}
	if !eff.refundQueue {
		return nil
	}
	refund, err := m.cancellation.Issue(ctx, eff.holdID)
	if err != nil {
		slog.Warn("refund left pending for retry", "hold_id", eff.holdID, "error", err)
		return nil
	}
	return refund
}

func lockHold(ctx context.Context, tx shared.Tx, holdID uuid.UUID) (*hold.BookingHold, error) {
	h, err := tx.Holds().GetForUpdate(ctx, holdID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrHoldNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return h, nil
}
