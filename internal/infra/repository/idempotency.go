package repository

import (
	"context"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"

	"github.com/google/uuid"
)

type IdempotencyWriteQueries interface {
	TryInsertIdempotencyKey(ctx context.Context, db queries.DBTX, arg queries.TryInsertIdempotencyKeyParams) error
	UpdateIdempotencyKeyCompleted(ctx context.Context, db queries.DBTX, key, userID, holdID uuid.UUID) error
	ClaimExpiredIdempotencyKey(ctx context.Context, db queries.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error)
}

type IdempotencyRepository struct {
	queries IdempotencyWriteQueries
	db      queries.DBTX
}

func NewIdempotencyRepository(q IdempotencyWriteQueries, db queries.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{
		queries: q,
		db:      db,
	}
}

func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	params := queries.TryInsertIdempotencyKeyParams{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}

	if err := r.queries.TryInsertIdempotencyKey(ctx, r.db, params); err != nil {
		return infra.WrapRepoErr("failed to try insert idempotency key", err)
	}

	return nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, key, userID, holdID uuid.UUID) error {
	if err := r.queries.UpdateIdempotencyKeyCompleted(ctx, r.db, key, userID, holdID); err != nil {
		return infra.WrapRepoErr("failed to update idempotency key status", err)
	}

	return nil
}

// ClaimExpired takes over a key whose previous attempt outlived its TTL.
func (r *IdempotencyRepository) ClaimExpired(ctx context.Context, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error) {
	n, err := r.queries.ClaimExpiredIdempotencyKey(ctx, r.db, key, userID, requestHash, expiresAt)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to claim expired idempotency key", err)
	}

	return n, nil
}
