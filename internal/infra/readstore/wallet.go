package readstore

import (
	"context"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type WalletViewQueries interface {
	GetWalletBalance(ctx context.Context, db queries.DBTX, userID uuid.UUID) (int64, error)
}

type WalletReadStore struct {
	queries WalletViewQueries
	db      queries.DBTX
}

func NewWalletReadStore(q WalletViewQueries, db queries.DBTX) *WalletReadStore {
	return &WalletReadStore{queries: q, db: db}
}

func (r *WalletReadStore) FindBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := r.queries.GetWalletBalance(ctx, r.db, userID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, nil
		}
		return 0, infra.WrapRepoErr("failed to read wallet balance", err)
	}
	return balance, nil
}
