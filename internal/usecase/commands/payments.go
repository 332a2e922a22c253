package commands

import (
	"context"
	"log/slog"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=payments.go -destination=../../../tests/mock/commands/payments_mock.go -package=commands

type PaymentOutcome string

const (
	PaymentConfirmed PaymentOutcome = "confirmed"
	PaymentDeclined  PaymentOutcome = "declined"
	PaymentRedirect  PaymentOutcome = "redirect"
)

// InitiateResult is either Immediate (Outcome confirmed or declined) or Deferred
// (Outcome redirect with RedirectURL and ExternalRef).
type InitiateResult struct {
	Outcome     PaymentOutcome
	RedirectURL string
	ExternalRef string
}

func (r InitiateResult) Immediate() bool { return r.Outcome != PaymentRedirect }

// GatewayAdapter starts a payment on the channel for a pending hold.
type GatewayAdapter interface {
	// Initiate settles wallet and cash inside the caller's transaction, h locked.
	Initiate(ctx context.Context, tx shared.Tx, h *hold.BookingHold, channel hold.Channel) (InitiateResult, error)
	// Redirect creates the provider order for a gateway channel. It calls out over the
	// network, so callers run it without holding the hold row.
	Redirect(ctx context.Context, holdID uuid.UUID, amount int64, channel hold.Channel) (InitiateResult, error)
}

type ChoosePaymentResult struct {
	HoldID      uuid.UUID
	Status      hold.Status
	Outcome     PaymentOutcome
	RedirectURL string
	ExternalRef string
}

type PaymentCommands interface {
	ChoosePayment(ctx context.Context, holdID, userID uuid.UUID, channel hold.Channel) (*ChoosePaymentResult, error)
}

// paymentRouter dispatches on the channel kind.
type paymentRouter struct {
	clock     clock.Clock
	providers map[string]PaymentProvider
}

func NewGatewayAdapter(clk clock.Clock, providers []PaymentProvider) GatewayAdapter {
	byName := make(map[string]PaymentProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &paymentRouter{clock: clk, providers: byName}
}

func (a *paymentRouter) Initiate(ctx context.Context, tx shared.Tx, h *hold.BookingHold, channel hold.Channel) (InitiateResult, error) {
	switch channel.Kind() {
	case hold.ChannelWallet:
		return a.initiateWallet(ctx, tx, h)
	case hold.ChannelCash:
		if err := h.AssignCash(a.clock.Now()); err != nil {
			return InitiateResult{}, mapChannelErr(err)
		}
		return InitiateResult{Outcome: PaymentConfirmed}, nil
	default:
		return InitiateResult{}, errs.Mark(hold.ErrInvalidChannel, errs.ErrDomainValidation)
	}
}

// initiateWallet debits in a single guarded statement. A declined debit leaves h as it
// was only if the caller rolls the transaction back, which ChoosePayment does.
func (a *paymentRouter) initiateWallet(ctx context.Context, tx shared.Tx, h *hold.BookingHold) (InitiateResult, error) {
	if err := h.RecordWalletDebit(a.clock.Now()); err != nil {
		return InitiateResult{}, mapChannelErr(err)
	}
	ok, err := tx.Wallets().Debit(ctx, h.UserID(), h.ID(), h.AmountDue().Amount())
	if err != nil {
		return InitiateResult{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ok {
		return InitiateResult{Outcome: PaymentDeclined}, nil
	}
	return InitiateResult{Outcome: PaymentConfirmed}, nil
}

func (a *paymentRouter) Redirect(ctx context.Context, holdID uuid.UUID, amount int64, channel hold.Channel) (InitiateResult, error) {
	if !channel.IsGateway() {
		return InitiateResult{}, errs.Mark(hold.ErrInvalidChannel, errs.ErrDomainValidation)
	}
	provider, ok := a.providers[channel.Provider()]
	if !ok {
		return InitiateResult{}, errs.ErrUnknownProvider
	}

	token := hold.NewOrderToken(provider.Name(), holdID, a.clock.Now()).String()
	redirectURL, err := provider.CreatePayment(ctx, PaymentOrder{
		OrderID:     token,
		HoldID:      holdID,
		Amount:      amount,
		Description: "Court booking " + holdID.String(),
	})
	if err != nil {
		slog.Warn("gateway create payment failed", "hold_id", holdID, "provider", provider.Name(), "error", err)
		return InitiateResult{}, errs.Mark(err, errs.ErrGatewayUnavailable)
	}
	return InitiateResult{Outcome: PaymentRedirect, RedirectURL: redirectURL, ExternalRef: token}, nil
}

type paymentUseCaseImpl struct {
	uow     shared.UnitOfWork
	clock   clock.Clock
	machine *Machine
	adapter GatewayAdapter
}

func NewPaymentUseCase(uow shared.UnitOfWork, clk clock.Clock, machine *Machine, adapter GatewayAdapter) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:     uow,
		clock:   clk,
		machine: machine,
		adapter: adapter,
	}
}

// ChoosePayment runs the adapter and, for an immediate success, CONFIRM in the same
// transaction. An overdue hold is expired instead and the caller gets ErrHoldWindowClosed.
func (uc *paymentUseCaseImpl) ChoosePayment(ctx context.Context, holdID, userID uuid.UUID, channel hold.Channel) (*ChoosePaymentResult, error) {
	if channel.IsGateway() {
		return uc.chooseGateway(ctx, holdID, userID, channel)
	}

	var (
		result  *ChoosePaymentResult
		eff     effect
		expired bool
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		h, e, err := uc.lockPending(ctx, tx, holdID, userID)
		eff, expired = e, h == nil
		if err != nil || expired {
			return err
		}

		res, err := uc.adapter.Initiate(ctx, tx, h, channel)
		if err != nil {
			return err
		}
		if res.Outcome == PaymentDeclined {
			return errs.ErrInsufficientFunds
		}
		eff, err = uc.machine.applyLocked(ctx, tx, h, hold.EventConfirm, "")
		if err != nil {
			return err
		}
		// deadline passed after the overdue check: CONFIRM became EXPIRE and a wallet
		// debit is refunded after commit
		if eff.transition.Event == hold.EventExpire {
			expired = true
			return nil
		}
		result = choosePaymentResult(h, res)
		return nil
	})
	return uc.finish(ctx, result, eff, expired, err)
}

// chooseGateway checks the hold, creates the provider order with no row lock held,
// then re-locks to record the order token. A hold that closed in between is not
// reopened; the unused provider order lapses on its own.
func (uc *paymentUseCaseImpl) chooseGateway(ctx context.Context, holdID, userID uuid.UUID, channel hold.Channel) (*ChoosePaymentResult, error) {
	var (
		amount  int64
		eff     effect
		expired bool
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		h, e, err := uc.lockPending(ctx, tx, holdID, userID)
		eff, expired = e, h == nil
		if err != nil || expired {
			return err
		}
		if !h.Channel().IsZero() && h.Channel() != channel {
			return errs.ErrChannelAlreadyChosen
		}
		amount = h.AmountDue().Amount()
		return nil
	})
	if err != nil || expired {
		return uc.finish(ctx, nil, eff, expired, err)
	}

	res, err := uc.adapter.Redirect(ctx, holdID, amount, channel)
	if err != nil {
		return nil, err
	}

	var result *ChoosePaymentResult
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		h, e, err := uc.lockPending(ctx, tx, holdID, userID)
		eff, expired = e, h == nil
		if err != nil || expired {
			return err
		}
		if err := h.AssignGateway(channel, res.ExternalRef, uc.clock.Now()); err != nil {
			return mapChannelErr(err)
		}
		if err := tx.Holds().Update(ctx, h); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		result = choosePaymentResult(h, res)
		return nil
	})
	return uc.finish(ctx, result, eff, expired, err)
}

// lockPending locks a hold the user owns and that can still take a payment. An
// overdue hold is expired in tx and returned as nil with the expiry's effect.
func (uc *paymentUseCaseImpl) lockPending(ctx context.Context, tx shared.Tx, holdID, userID uuid.UUID) (*hold.BookingHold, effect, error) {
	h, err := lockHold(ctx, tx, holdID)
	if err != nil {
		return nil, effect{}, err
	}
	if h.UserID() != userID {
		return nil, effect{}, errs.ErrHoldNotOwned
	}
	if h.Status().IsTerminal() {
		return nil, effect{}, errs.ErrHoldWindowClosed
	}
	if h.IsOverdue(uc.clock.Now()) {
		eff, err := uc.machine.applyLocked(ctx, tx, h, hold.EventExpire, "")
		return nil, eff, err
	}
	return h, effect{}, nil
}

func (uc *paymentUseCaseImpl) finish(ctx context.Context, result *ChoosePaymentResult, eff effect, expired bool, err error) (*ChoosePaymentResult, error) {
	if err != nil {
		return nil, err
	}
	uc.machine.afterCommit(ctx, eff)
	if expired {
		return nil, errs.ErrHoldWindowClosed
	}
	return result, nil
}

func choosePaymentResult(h *hold.BookingHold, res InitiateResult) *ChoosePaymentResult {
	return &ChoosePaymentResult{
		HoldID:      h.ID(),
		Status:      h.Status(),
		Outcome:     res.Outcome,
		RedirectURL: res.RedirectURL,
		ExternalRef: res.ExternalRef,
	}
}

func mapChannelErr(err error) error {
	switch {
	case errs.Is(err, hold.ErrChannelAlreadyChosen):
		return errs.ErrChannelAlreadyChosen
	case errs.Is(err, hold.ErrHoldTerminal):
		return errs.ErrHoldWindowClosed
	default:
		return errs.Mark(err, errs.ErrDomainValidation)
	}
}
