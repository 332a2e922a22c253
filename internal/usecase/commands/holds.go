package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	reqdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/request"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/holdclock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=holds.go -destination=../../../tests/mock/commands/holds_mock.go -package=commands

const (
	createHoldEndpoint = "POST /api/holds"
	idempotencyTTL     = 24 * time.Hour
)

type CreateHoldResult struct {
	Hold       *queries.HoldView
	IsReplayed bool
}

type CancelHoldResult struct {
	HoldID       uuid.UUID
	Status       hold.Status
	Applied      bool
	RefundAmount int64
	RefundStatus hold.RefundStatus
}

type HoldCommands interface {
	CreateHold(ctx context.Context, req reqdto.CreateHoldRequest, userID, idempotencyKey uuid.UUID) (*CreateHoldResult, error)
	CancelHold(ctx context.Context, holdID, userID uuid.UUID) (*CancelHoldResult, error)
}

// pendingSnapshot is stored under pending_booking_<id> while the hold awaits payment.
type pendingSnapshot struct {
	HoldID    uuid.UUID `json:"hold_id"`
	UserID    uuid.UUID `json:"user_id"`
	Slots     []string  `json:"slots"`
	AmountDue int64     `json:"amount_due"`
	Deadline  time.Time `json:"deadline"`
}

type holdUseCaseImpl struct {
	uow         shared.UnitOfWork
	clock       clock.Clock
	services    *hold.Services
	holdClock   holdclock.HoldClock
	machine     *Machine
	holdQueries queries.HoldQueries
}

func NewHoldUseCase(
	uow shared.UnitOfWork,
	clk clock.Clock,
	services *hold.Services,
	hc holdclock.HoldClock,
	machine *Machine,
	holdQueries queries.HoldQueries,
) HoldCommands {
	return &holdUseCaseImpl{
		uow:         uow,
		clock:       clk,
		services:    services,
		holdClock:   hc,
		machine:     machine,
		holdQueries: holdQueries,
	}
}

func (uc *holdUseCaseImpl) CreateHold(
	ctx context.Context,
	req reqdto.CreateHoldRequest,
	userID, idempotencyKey uuid.UUID,
) (*CreateHoldResult, error) {
	slots, err := req.ToDomain(uc.services.MaxSlots)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	requestHash := calculateRequestHash(slots)

	var (
		created  *hold.BookingHold
		replayID *uuid.UUID
	)
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		created, replayID = nil, nil

		replay, err := uc.claimKey(ctx, tx, idempotencyKey, userID, requestHash)
		if err != nil {
			return err
		}
		if replay != nil {
			replayID = replay
			return nil
		}

		created, err = uc.createLocked(ctx, tx, userID, slots)
		if err != nil {
			return err
		}
		if err := tx.Idempotency().UpdateStatusCompleted(ctx, idempotencyKey, userID, created.ID()); err != nil {
			return errs.Mark(err, errs.ErrIdempotencyCheckFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replayID != nil {
		view, err := uc.holdQueries.GetByID(ctx, userID, *replayID)
		if err != nil {
			return nil, err
		}
		return &CreateHoldResult{Hold: view, IsReplayed: true}, nil
	}

	uc.armClock(ctx, created)

	slog.Info("hold created",
		"hold_id", created.ID(),
		"user_id", userID,
		"slots", len(slots),
		"amount_due", created.AmountDue().Amount(),
		"deadline", created.Deadline())

	view, err := uc.holdQueries.GetByID(ctx, userID, created.ID())
	if err != nil {
		return nil, err
	}
	return &CreateHoldResult{Hold: view}, nil
}

// claimKey reserves the idempotency key for this transaction. A non-nil id means the
// request already completed and should be replayed.
func (uc *holdUseCaseImpl) claimKey(ctx context.Context, tx shared.Tx, key, userID uuid.UUID, requestHash string) (*uuid.UUID, error) {
	now := uc.clock.Now()
	expiresAt := now.Add(idempotencyTTL)

	if err := tx.Idempotency().TryInsert(ctx, key, userID, createHoldEndpoint, requestHash, expiresAt); err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}
	existing, err := tx.Reads().IdempotencyByKey(ctx, key, userID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}

	if !existing.ExpiresAt.After(now) {
		if _, err := tx.Idempotency().ClaimExpired(ctx, key, userID, requestHash, expiresAt); err != nil {
			return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
		}
		return nil, nil
	}
	if existing.RequestHash != requestHash {
		return nil, errs.ErrDuplicateHoldRequest
	}

	switch existing.Status {
	case shared.IdempotencyCompleted:
		if existing.ResultHoldID == nil {
			return nil, errs.Mark(errs.New("completed request missing result hold ID"), errs.ErrIdempotencyCheckFailed)
		}
		return existing.ResultHoldID, nil
	case shared.IdempotencyProcessing:
		// only this transaction can see an uncommitted processing row
		return nil, nil
	default:
		return nil, errs.Mark(errs.New("invalid idempotency key status"), errs.ErrIdempotencyCheckFailed)
	}
}

func (uc *holdUseCaseImpl) createLocked(ctx context.Context, tx shared.Tx, userID uuid.UUID, slots []hold.SlotRef) (*hold.BookingHold, error) {
	rates, err := tx.Reads().ResourceRates(ctx, resourceIDs(slots))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	amount, err := hold.QuoteAmount(rates, slots)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	h, err := hold.NewBookingHold(uc.services, userID, slots, amount)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := tx.Holds().Create(ctx, h); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Slots().Acquire(ctx, h.ID(), h.Slots()); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.Mark(err, errs.ErrSlotUnavailable)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	record := holdclock.NewRecord(h.StartedAt(), uc.services.Window)
	if _, err := tx.Records().InsertIfAbsent(ctx, holdclock.StartKey(h.ID()), record.Encode()); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	snapshot, err := json.Marshal(newPendingSnapshot(h))
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode pending snapshot")
	}
	if err := tx.Records().Put(ctx, holdclock.PendingKey(h.ID()), snapshot); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return h, nil
}

// armClock is best effort: the start record is already durable and the sweeper
// expires the hold if no timer gets armed.
func (uc *holdUseCaseImpl) armClock(ctx context.Context, h *hold.BookingHold) {
	if _, err := uc.holdClock.Start(ctx, h.ID(), uc.services.Window); err != nil {
		slog.Warn("failed to start hold clock", "hold_id", h.ID(), "error", err)
		return
	}
	if err := uc.holdClock.OnExpire(ctx, h.ID(), uc.machine.OnExpire); err != nil {
		slog.Warn("failed to arm hold expiry", "hold_id", h.ID(), "error", err)
	}
}

func (uc *holdUseCaseImpl) CancelHold(ctx context.Context, holdID, userID uuid.UUID) (*CancelHoldResult, error) {
	var (
		eff    effect
		result *CancelHoldResult
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		eff, result = effect{}, nil

		h, err := lockHold(ctx, tx, holdID)
		if err != nil {
			return err
		}
		if h.UserID() != userID {
			return errs.ErrHoldNotOwned
		}

		eff, err = uc.machine.applyLocked(ctx, tx, h, hold.EventUserCancel, "")
		if err != nil {
			return err
		}
		result = &CancelHoldResult{
			HoldID:  h.ID(),
			Status:  h.Status(),
			Applied: eff.transition.Applied,
		}
		if r := h.Refund(); r != nil {
			result.RefundAmount = r.Amount().Amount()
			result.RefundStatus = r.Status()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refund := uc.machine.afterCommit(ctx, eff); refund != nil {
		result.RefundAmount = refund.Amount().Amount()
		result.RefundStatus = refund.Status()
	}
	return result, nil
}

func newPendingSnapshot(h *hold.BookingHold) pendingSnapshot {
	slots := h.Slots()
	keys := make([]string, len(slots))
	for i, s := range slots {
		keys[i] = s.Key()
	}
	return pendingSnapshot{
		HoldID:    h.ID(),
		UserID:    h.UserID(),
		Slots:     keys,
		AmountDue: h.AmountDue().Amount(),
		Deadline:  h.Deadline(),
	}
}

func resourceIDs(slots []hold.SlotRef) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(slots))
	ids := make([]uuid.UUID, 0, len(slots))
	for _, s := range slots {
		if _, ok := seen[s.ResourceID()]; ok {
			continue
		}
		seen[s.ResourceID()] = struct{}{}
		ids = append(ids, s.ResourceID())
	}
	return ids
}

// calculateRequestHash expects slots already sorted by NewSlotSet.
func calculateRequestHash(slots []hold.SlotRef) string {
	keys := make([]string, len(slots))
	for i, s := range slots {
		keys[i] = s.Key()
	}
	sum := sha256.Sum256([]byte(strings.Join(keys, ";")))
	return hex.EncodeToString(sum[:])
}
