package hold

import (
	"errors"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidEvent         = errors.New("invalid hold event")
	ErrInvalidStatus        = errors.New("invalid hold status")
	ErrHoldTerminal         = errors.New("hold is already terminal")
	ErrChannelAlreadyChosen = errors.New("payment channel already chosen")
	ErrRefundAlreadyIssued  = errors.New("refund already recorded")
	ErrNoRefundPending      = errors.New("no pending refund")
	ErrNothingToRefund      = errors.New("no captured funds to refund")
	ErrInvalidWindow        = errors.New("hold window must be positive")
)

type Services struct {
	Clock    clock.Clock
	Window   time.Duration
	MaxSlots int
}

// BookingHold is a time-boxed exclusive reservation of slots pending payment.
// amountDue and slots never change after creation.
type BookingHold struct {
	id            uuid.UUID
	userID        uuid.UUID
	slots         []SlotRef
	amountDue     Money
	status        Status
	startedAt     time.Time
	deadline      time.Time
	channel       Channel
	externalRef   string
	captured      Money
	refund        *Refund
	declineReason string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewBookingHold(services *Services, userID uuid.UUID, slots []SlotRef, amountDue Money) (*BookingHold, error) {
	if services.Window <= 0 {
		return nil, ErrInvalidWindow
	}
	set, err := NewSlotSet(slots, services.MaxSlots)
	if err != nil {
		return nil, err
	}
	now := services.Clock.Now()
	return &BookingHold{
		id:        uuid.New(),
		userID:    userID,
		slots:     set,
		amountDue: amountDue,
		status:    StatusPendingPayment,
		startedAt: now,
		deadline:  now.Add(services.Window),
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructBookingHold(
	id, userID uuid.UUID,
	slots []SlotRef,
	amountDue Money,
	status Status,
	startedAt, deadline time.Time,
	channel Channel,
	externalRef string,
	captured Money,
	refund *Refund,
	declineReason string,
	createdAt, updatedAt time.Time,
) *BookingHold {
	return &BookingHold{
		id:            id,
		userID:        userID,
		slots:         slots,
		amountDue:     amountDue,
		status:        status,
		startedAt:     startedAt,
		deadline:      deadline,
		channel:       channel,
		externalRef:   externalRef,
		captured:      captured,
		refund:        refund,
		declineReason: declineReason,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Apply runs event through the transition table. An event against a terminal hold is
// a no-op (Applied=false, nil error). A pending hold whose deadline has passed
// expires instead of taking the requested event.
func (h *BookingHold) Apply(event Event, now time.Time) (Transition, error) {
	next, ok := transitionTable[event]
	if !ok {
		return Transition{}, ErrInvalidEvent
	}

	tr := Transition{Event: event, Requested: event, From: h.status, To: h.status, At: now}
	if h.status != StatusPendingPayment {
		return tr, nil
	}

	if event != EventExpire && h.IsOverdue(now) {
		tr.Event = EventExpire
		next = transitionTable[EventExpire]
	}

	h.status = next
	h.updatedAt = now
	tr.To = next
	tr.Applied = true
	return tr, nil
}

func (h *BookingHold) IsOverdue(now time.Time) bool {
	return h.status == StatusPendingPayment && !now.Before(h.deadline)
}

func (h *BookingHold) Remaining(now time.Time) time.Duration {
	if h.status != StatusPendingPayment {
		return 0
	}
	if d := h.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (h *BookingHold) ensurePending() error {
	if h.status.IsTerminal() {
		return ErrHoldTerminal
	}
	return nil
}

func (h *BookingHold) ensureChannel(c Channel) error {
	if !h.channel.IsZero() && h.channel != c {
		return ErrChannelAlreadyChosen
	}
	return nil
}

// RecordWalletDebit marks amountDue as captured from the customer's wallet.
func (h *BookingHold) RecordWalletDebit(now time.Time) error {
	if err := h.ensurePending(); err != nil {
		return err
	}
	wallet := Channel{kind: ChannelWallet}
	if err := h.ensureChannel(wallet); err != nil {
		return err
	}
	h.channel = wallet
	h.captured = h.amountDue
	h.updatedAt = now
	return nil
}

// AssignGateway binds the hold to a gateway order. A retry on the same gateway
// replaces the correlation token.
func (h *BookingHold) AssignGateway(c Channel, externalRef string, now time.Time) error {
	if !c.IsGateway() || externalRef == "" {
		return ErrInvalidChannel
	}
	if err := h.ensurePending(); err != nil {
		return err
	}
	if err := h.ensureChannel(c); err != nil {
		return err
	}
	h.channel = c
	h.externalRef = externalRef
	h.updatedAt = now
	return nil
}

func (h *BookingHold) AssignCash(now time.Time) error {
	if err := h.ensurePending(); err != nil {
		return err
	}
	cash := Channel{kind: ChannelCash}
	if err := h.ensureChannel(cash); err != nil {
		return err
	}
	h.channel = cash
	h.updatedAt = now
	return nil
}

// RecordLateCharge notes a gateway charge that arrived after the hold had
// already closed without confirmation.
func (h *BookingHold) RecordLateCharge(amount Money, now time.Time) {
	if h.status == StatusConfirmed || !h.captured.IsZero() {
		return
	}
	h.captured = amount
	h.updatedAt = now
}

func (h *BookingHold) SetDeclineReason(reason string) {
	if reason != "" && h.declineReason == "" {
		h.declineReason = reason
	}
}

// NeedsRefund is true for a closed, unconfirmed hold that still holds captured funds.
func (h *BookingHold) NeedsRefund() bool {
	return h.status.IsTerminal() && h.status != StatusConfirmed &&
		!h.captured.IsZero() && h.refund == nil
}

// StartRefund records a pending refund for the captured amount. It succeeds at most once.
func (h *BookingHold) StartRefund(now time.Time) (Refund, error) {
	if h.refund != nil {
		return Refund{}, ErrRefundAlreadyIssued
	}
	if !h.NeedsRefund() {
		return Refund{}, ErrNothingToRefund
	}
	r := Refund{amount: h.captured, status: RefundPending}
	h.refund = &r
	h.updatedAt = now
	return r, nil
}

func (h *BookingHold) CompleteRefund(now time.Time) error {
	if h.refund == nil || h.refund.status != RefundPending {
		return ErrNoRefundPending
	}
	h.refund.status = RefundCompleted
	h.updatedAt = now
	return nil
}

func (h *BookingHold) ID() uuid.UUID         { return h.id }
func (h *BookingHold) UserID() uuid.UUID     { return h.userID }
func (h *BookingHold) AmountDue() Money      { return h.amountDue }
func (h *BookingHold) Status() Status        { return h.status }
func (h *BookingHold) StartedAt() time.Time  { return h.startedAt }
func (h *BookingHold) Deadline() time.Time   { return h.deadline }
func (h *BookingHold) Channel() Channel      { return h.channel }
func (h *BookingHold) ExternalRef() string   { return h.externalRef }
func (h *BookingHold) Captured() Money       { return h.captured }
func (h *BookingHold) DeclineReason() string { return h.declineReason }
func (h *BookingHold) CreatedAt() time.Time  { return h.createdAt }
func (h *BookingHold) UpdatedAt() time.Time  { return h.updatedAt }

func (h *BookingHold) Slots() []SlotRef {
	out := make([]SlotRef, len(h.slots))
	copy(out, h.slots)
	return out
}

func (h *BookingHold) Refund() *Refund {
	if h.refund == nil {
		return nil
	}
	r := *h.refund
	return &r
}
