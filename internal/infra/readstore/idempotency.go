package readstore

import (
	"context"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
)

type IdempotencyReadQueries interface {
	GetIdempotencyKey(ctx context.Context, db queries.DBTX, key, userID uuid.UUID) (queries.IdempotencyKeys, error)
}

type IdempotencyReadStore struct {
	queries IdempotencyReadQueries
}

func NewIdempotencyReadStore(q IdempotencyReadQueries) *IdempotencyReadStore {
	return &IdempotencyReadStore{
		queries: q,
	}
}

// Get returns expired keys too; the caller decides whether to reclaim them.
func (r *IdempotencyReadStore) Get(ctx context.Context, db queries.DBTX, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	row, err := r.queries.GetIdempotencyKey(ctx, db, key, userID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}

	record := &shared.IdempotencyRecord{
		Key:         row.Key,
		UserID:      row.UserID,
		Status:      row.Status,
		RequestHash: row.RequestHash,
		ExpiresAt:   row.ExpiresAt,
	}
	if row.ResultHoldID.Valid {
		id := uuid.UUID(row.ResultHoldID.Bytes)
		record.ResultHoldID = &id
	}
	return record, nil
}
