package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getWalletBalance = `SELECT balance FROM wallets WHERE user_id = $1`

func (q *Queries) GetWalletBalance(ctx context.Context, db DBTX, userID uuid.UUID) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, getWalletBalance, userID).Scan(&balance)
	return balance, err
}

// The balance guard and the decrement are one statement.
const debitWallet = `UPDATE wallets SET balance = balance - $2, updated_at = NOW()
WHERE user_id = $1 AND balance >= $2
RETURNING balance`

func (q *Queries) DebitWallet(ctx context.Context, db DBTX, userID uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, debitWallet, userID, amount).Scan(&balance)
	return balance, err
}

const creditWallet = `INSERT INTO wallets (user_id, balance) VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
RETURNING balance`

func (q *Queries) CreditWallet(ctx context.Context, db DBTX, userID uuid.UUID, amount int64) (int64, error) {
	var balance int64
	err := db.QueryRow(ctx, creditWallet, userID, amount).Scan(&balance)
	return balance, err
}

const insertWalletEntry = `INSERT INTO wallet_entries (user_id, hold_id, kind, amount) VALUES ($1, $2, $3, $4)`

type InsertWalletEntryParams struct {
	UserID uuid.UUID
	HoldID pgtype.UUID
	Kind   string
	Amount int64
}

func (q *Queries) InsertWalletEntry(ctx context.Context, db DBTX, arg InsertWalletEntryParams) error {
	_, err := db.Exec(ctx, insertWalletEntry, arg.UserID, arg.HoldID, arg.Kind, arg.Amount)
	return err
}
