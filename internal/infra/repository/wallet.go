package repository

import (
	"context"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	walletEntryDebit  = "debit"
	walletEntryRefund = "refund"
	walletEntryTopUp  = "topup"
)

type WalletWriteQueries interface {
	GetWalletBalance(ctx context.Context, db queries.DBTX, userID uuid.UUID) (int64, error)
	DebitWallet(ctx context.Context, db queries.DBTX, userID uuid.UUID, amount int64) (int64, error)
	CreditWallet(ctx context.Context, db queries.DBTX, userID uuid.UUID, amount int64) (int64, error)
	InsertWalletEntry(ctx context.Context, db queries.DBTX, arg queries.InsertWalletEntryParams) error
}

type WalletRepository struct {
	queries WalletWriteQueries
	db      queries.DBTX
}

func NewWalletRepository(q WalletWriteQueries, db queries.DBTX) *WalletRepository {
	return &WalletRepository{queries: q, db: db}
}

// Balance is zero for a user without a wallet row.
func (r *WalletRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := r.queries.GetWalletBalance(ctx, r.db, userID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to read wallet balance", err)
	}
	return balance, nil
}

// Debit reports false without error when the balance does not cover amount.
// A second debit for the same hold fails on the (hold_id, kind) unique index.
func (r *WalletRepository) Debit(ctx context.Context, userID, holdID uuid.UUID, amount int64) (bool, error) {
	if _, err := r.queries.DebitWallet(ctx, r.db, userID, amount); err != nil {
		if pgconv.IsNoRows(err) {
			return false, nil
		}
		return false, infra.WrapRepoErr("failed to debit wallet", err)
	}

	err := r.queries.InsertWalletEntry(ctx, r.db, queries.InsertWalletEntryParams{
		UserID: userID,
		HoldID: pgtype.UUID{Bytes: holdID, Valid: true},
		Kind:   walletEntryDebit,
		Amount: amount,
	})
	if err != nil {
		return false, infra.WrapRepoErr("failed to record wallet debit", err)
	}
	return true, nil
}

func (r *WalletRepository) Refund(ctx context.Context, userID, holdID uuid.UUID, amount int64) error {
	if _, err := r.queries.CreditWallet(ctx, r.db, userID, amount); err != nil {
		return infra.WrapRepoErr("failed to credit wallet", err)
	}
	err := r.queries.InsertWalletEntry(ctx, r.db, queries.InsertWalletEntryParams{
		UserID: userID,
		HoldID: pgtype.UUID{Bytes: holdID, Valid: true},
		Kind:   walletEntryRefund,
		Amount: amount,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to record wallet refund", err)
	}
	return nil
}

func (r *WalletRepository) TopUp(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	balance, err := r.queries.CreditWallet(ctx, r.db, userID, amount)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to top up wallet", err)
	}
	err = r.queries.InsertWalletEntry(ctx, r.db, queries.InsertWalletEntryParams{
		UserID: userID,
		Kind:   walletEntryTopUp,
		Amount: amount,
	})
	if err != nil {
		return 0, infra.WrapRepoErr("failed to record wallet top-up", err)
	}
	return balance, nil
}
