package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const holdColumns = `id, user_id, amount_due, status, hold_started_at, hold_deadline, payment_channel,
	external_ref, captured_amount, refund_amount, refund_status, decline_reason, created_at, updated_at`

func scanHold(row pgx.Row) (Holds, error) {
	var h Holds
	err := row.Scan(
		&h.ID, &h.UserID, &h.AmountDue, &h.Status, &h.HoldStartedAt, &h.HoldDeadline, &h.PaymentChannel,
		&h.ExternalRef, &h.CapturedAmount, &h.RefundAmount, &h.RefundStatus, &h.DeclineReason, &h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

const createHold = `INSERT INTO holds (` + holdColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (q *Queries) CreateHold(ctx context.Context, db DBTX, h Holds) error {
	_, err := db.Exec(ctx, createHold,
		h.ID, h.UserID, h.AmountDue, h.Status, h.HoldStartedAt, h.HoldDeadline, h.PaymentChannel,
		h.ExternalRef, h.CapturedAmount, h.RefundAmount, h.RefundStatus, h.DeclineReason, h.CreatedAt, h.UpdatedAt,
	)
	return err
}

const insertHoldSlot = `INSERT INTO hold_slots (hold_id, position, resource_id, slot_date, start_time, end_time)
VALUES ($1, $2, $3, $4, $5, $6)`

func (q *Queries) InsertHoldSlot(ctx context.Context, db DBTX, s HoldSlots) error {
	_, err := db.Exec(ctx, insertHoldSlot, s.HoldID, s.Position, s.ResourceID, s.SlotDate, s.StartTime, s.EndTime)
	return err
}

const getHold = `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

func (q *Queries) GetHold(ctx context.Context, db DBTX, id uuid.UUID) (Holds, error) {
	return scanHold(db.QueryRow(ctx, getHold, id))
}

const getHoldForUpdate = getHold + ` FOR UPDATE`

func (q *Queries) GetHoldForUpdate(ctx context.Context, db DBTX, id uuid.UUID) (Holds, error) {
	return scanHold(db.QueryRow(ctx, getHoldForUpdate, id))
}

const getHoldByExternalRefForUpdate = `SELECT ` + holdColumns + ` FROM holds WHERE external_ref = $1 FOR UPDATE`

func (q *Queries) GetHoldByExternalRefForUpdate(ctx context.Context, db DBTX, ref string) (Holds, error) {
	return scanHold(db.QueryRow(ctx, getHoldByExternalRefForUpdate, ref))
}

// Keyset page ordered newest first; a NULL cursor starts at the top.
const listHoldsByUser = `SELECT ` + holdColumns + ` FROM holds
WHERE user_id = $1
  AND ($2::timestamptz IS NULL OR (created_at, id) < ($2, $3::uuid))
ORDER BY created_at DESC, id DESC
LIMIT $4`

type ListHoldsByUserParams struct {
	UserID         uuid.UUID
	AfterCreatedAt pgtype.Timestamptz
	AfterID        pgtype.UUID
	Limit          int32
}

func (q *Queries) ListHoldsByUser(ctx context.Context, db DBTX, arg ListHoldsByUserParams) ([]Holds, error) {
	rows, err := db.Query(ctx, listHoldsByUser, arg.UserID, arg.AfterCreatedAt, arg.AfterID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Holds
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

const listSlotsForHolds = `SELECT hold_id, position, resource_id, slot_date, start_time, end_time
FROM hold_slots WHERE hold_id = ANY($1) ORDER BY hold_id, position`

func (q *Queries) ListSlotsForHolds(ctx context.Context, db DBTX, holdIDs []uuid.UUID) ([]HoldSlots, error) {
	rows, err := db.Query(ctx, listSlotsForHolds, holdIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []HoldSlots
	for rows.Next() {
		var s HoldSlots
		if err := rows.Scan(&s.HoldID, &s.Position, &s.ResourceID, &s.SlotDate, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const listHoldSlots = `SELECT hold_id, position, resource_id, slot_date, start_time, end_time
FROM hold_slots WHERE hold_id = $1 ORDER BY position`

func (q *Queries) ListHoldSlots(ctx context.Context, db DBTX, holdID uuid.UUID) ([]HoldSlots, error) {
	rows, err := db.Query(ctx, listHoldSlots, holdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []HoldSlots
	for rows.Next() {
		var s HoldSlots
		if err := rows.Scan(&s.HoldID, &s.Position, &s.ResourceID, &s.SlotDate, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const updateHold = `UPDATE holds SET
	status = $2,
	payment_channel = $3,
	external_ref = $4,
	captured_amount = $5,
	refund_amount = $6,
	refund_status = $7,
	decline_reason = $8,
	updated_at = $9
WHERE id = $1`

type UpdateHoldParams struct {
	ID             uuid.UUID
	Status         string
	PaymentChannel pgtype.Text
	ExternalRef    pgtype.Text
	CapturedAmount int64
	RefundAmount   pgtype.Int8
	RefundStatus   pgtype.Text
	DeclineReason  pgtype.Text
	UpdatedAt      time.Time
}

func (q *Queries) UpdateHold(ctx context.Context, db DBTX, arg UpdateHoldParams) (int64, error) {
	tag, err := db.Exec(ctx, updateHold,
		arg.ID, arg.Status, arg.PaymentChannel, arg.ExternalRef, arg.CapturedAmount,
		arg.RefundAmount, arg.RefundStatus, arg.DeclineReason, arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listOverdueHolds = `SELECT id FROM holds
WHERE status = 'PENDING_PAYMENT' AND hold_deadline <= $1
ORDER BY hold_deadline LIMIT $2`

func (q *Queries) ListOverdueHolds(ctx context.Context, db DBTX, now time.Time, limit int32) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, listOverdueHolds, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
