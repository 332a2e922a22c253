package queries

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=wallet.go -destination=../../../tests/mock/queries/wallet_queries_mock.go -package=queries

type WalletQueries interface {
	Balance(ctx context.Context, userID uuid.UUID) (*WalletView, error)
}

type WalletViewRepo interface {
	FindBalance(ctx context.Context, userID uuid.UUID) (int64, error)
}

type walletQueriesImpl struct {
	repo WalletViewRepo
}

func NewWalletQueries(repo WalletViewRepo) WalletQueries {
	return &walletQueriesImpl{repo: repo}
}

func (q *walletQueriesImpl) Balance(ctx context.Context, userID uuid.UUID) (*WalletView, error) {
	balance, err := q.repo.FindBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &WalletView{UserID: userID, Balance: balance}, nil
}
