package commands

import (
	"context"
	"log/slog"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

//go:generate mockgen -source=wallet.go -destination=../../../tests/mock/commands/wallet_mock.go -package=commands

type WalletCommands interface {
	// TopUp credits the wallet of userID and returns the new balance.
	TopUp(ctx context.Context, userID uuid.UUID, amount int64) (int64, error)
}

type walletUseCaseImpl struct {
	uow shared.UnitOfWork
}

func NewWalletUseCase(uow shared.UnitOfWork) WalletCommands {
	return &walletUseCaseImpl{uow: uow}
}

func (uc *walletUseCaseImpl) TopUp(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, errs.Mark(errs.New("top-up amount must be positive"), errs.ErrDomainValidation)
	}

	var balance int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		balance, err = tx.Wallets().TopUp(ctx, userID, amount)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("wallet topped up", "user_id", userID, "amount", amount, "balance", balance)
	return balance, nil
}
