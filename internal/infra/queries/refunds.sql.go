package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const refundJobColumns = `id, hold_id, user_id, channel, external_ref, payment_id, amount, status, attempts, last_error, run_at`

func scanRefundJob(row pgx.Row) (RefundJobs, error) {
	var j RefundJobs
	err := row.Scan(&j.ID, &j.HoldID, &j.UserID, &j.Channel, &j.ExternalRef, &j.PaymentID,
		&j.Amount, &j.Status, &j.Attempts, &j.LastError, &j.RunAt)
	return j, err
}

// One job per hold; a second enqueue is ignored.
const createRefundJob = `INSERT INTO refund_jobs (hold_id, user_id, channel, external_ref, payment_id, amount, run_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (hold_id) DO NOTHING`

type CreateRefundJobParams struct {
	HoldID      uuid.UUID
	UserID      uuid.UUID
	Channel     string
	ExternalRef pgtype.Text
	PaymentID   pgtype.Text
	Amount      int64
	RunAt       time.Time
}

func (q *Queries) CreateRefundJob(ctx context.Context, db DBTX, arg CreateRefundJobParams) (int64, error) {
	tag, err := db.Exec(ctx, createRefundJob, arg.HoldID, arg.UserID, arg.Channel, arg.ExternalRef, arg.PaymentID, arg.Amount, arg.RunAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const claimDueRefundJobs = `SELECT ` + refundJobColumns + ` FROM refund_jobs
WHERE status = 'queued' AND run_at <= $1
ORDER BY run_at
LIMIT $2
FOR UPDATE SKIP LOCKED`

func (q *Queries) ClaimDueRefundJobs(ctx context.Context, db DBTX, now time.Time, limit int32) ([]RefundJobs, error) {
	rows, err := db.Query(ctx, claimDueRefundJobs, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []RefundJobs
	for rows.Next() {
		j, err := scanRefundJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, j)
	}
	return items, rows.Err()
}

const getRefundJobByHoldForUpdate = `SELECT ` + refundJobColumns + ` FROM refund_jobs WHERE hold_id = $1 FOR UPDATE`

func (q *Queries) GetRefundJobByHoldForUpdate(ctx context.Context, db DBTX, holdID uuid.UUID) (RefundJobs, error) {
	return scanRefundJob(db.QueryRow(ctx, getRefundJobByHoldForUpdate, holdID))
}

const updateRefundJobStatus = `UPDATE refund_jobs SET
	status = $2,
	attempts = attempts + $3,
	last_error = COALESCE($4, last_error),
	run_at = COALESCE($5, run_at),
	updated_at = NOW()
WHERE id = $1`

type UpdateRefundJobStatusParams struct {
	ID        uuid.UUID
	Status    string
	Attempt   int32
	LastError pgtype.Text
	RunAt     pgtype.Timestamptz
}

func (q *Queries) UpdateRefundJobStatus(ctx context.Context, db DBTX, arg UpdateRefundJobStatusParams) error {
	_, err := db.Exec(ctx, updateRefundJobStatus, arg.ID, arg.Status, arg.Attempt, arg.LastError, arg.RunAt)
	return err
}
