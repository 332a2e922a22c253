package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const tryInsertIdempotencyKey = `INSERT INTO idempotency_keys (key, user_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)
ON CONFLICT (key, user_id) DO NOTHING`

type TryInsertIdempotencyKeyParams struct {
	Key         uuid.UUID
	UserID      uuid.UUID
	Endpoint    string
	RequestHash string
	ExpiresAt   time.Time
}

func (q *Queries) TryInsertIdempotencyKey(ctx context.Context, db DBTX, arg TryInsertIdempotencyKeyParams) error {
	_, err := db.Exec(ctx, tryInsertIdempotencyKey, arg.Key, arg.UserID, arg.Endpoint, arg.RequestHash, arg.ExpiresAt)
	return err
}

const getIdempotencyKey = `SELECT key, user_id, endpoint, request_hash, status, result_hold_id, expires_at
FROM idempotency_keys WHERE key = $1 AND user_id = $2`

func (q *Queries) GetIdempotencyKey(ctx context.Context, db DBTX, key, userID uuid.UUID) (IdempotencyKeys, error) {
	var k IdempotencyKeys
	err := db.QueryRow(ctx, getIdempotencyKey, key, userID).Scan(
		&k.Key, &k.UserID, &k.Endpoint, &k.RequestHash, &k.Status, &k.ResultHoldID, &k.ExpiresAt)
	return k, err
}

const updateIdempotencyKeyCompleted = `UPDATE idempotency_keys SET status = 'completed', result_hold_id = $3
WHERE key = $1 AND user_id = $2`

func (q *Queries) UpdateIdempotencyKeyCompleted(ctx context.Context, db DBTX, key, userID, holdID uuid.UUID) error {
	_, err := db.Exec(ctx, updateIdempotencyKeyCompleted, key, userID, holdID)
	return err
}

const claimExpiredIdempotencyKey = `UPDATE idempotency_keys
SET request_hash = $3, status = 'processing', result_hold_id = NULL, expires_at = $4
WHERE key = $1 AND user_id = $2 AND expires_at < NOW()`

func (q *Queries) ClaimExpiredIdempotencyKey(ctx context.Context, db DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (int64, error) {
	tag, err := db.Exec(ctx, claimExpiredIdempotencyKey, key, userID, requestHash, expiresAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
