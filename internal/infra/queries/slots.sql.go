package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertSlotLock = `INSERT INTO slot_locks (resource_id, slot_date, start_time, end_time, hold_id, state)
VALUES ($1, $2, $3, $4, $5, 'held')`

type InsertSlotLockParams struct {
	ResourceID uuid.UUID
	SlotDate   time.Time
	StartTime  pgtype.Time
	EndTime    pgtype.Time
	HoldID     uuid.UUID
}

func (q *Queries) InsertSlotLock(ctx context.Context, db DBTX, arg InsertSlotLockParams) error {
	_, err := db.Exec(ctx, insertSlotLock, arg.ResourceID, arg.SlotDate, arg.StartTime, arg.EndTime, arg.HoldID)
	return err
}

const markSlotLocksBooked = `UPDATE slot_locks SET state = 'booked' WHERE hold_id = $1 AND state = 'held'`

func (q *Queries) MarkSlotLocksBooked(ctx context.Context, db DBTX, holdID uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, markSlotLocksBooked, holdID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteHeldSlotLocks = `DELETE FROM slot_locks WHERE hold_id = $1 AND state = 'held'`

func (q *Queries) DeleteHeldSlotLocks(ctx context.Context, db DBTX, holdID uuid.UUID) (int64, error) {
	tag, err := db.Exec(ctx, deleteHeldSlotLocks, holdID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listResourceRates = `SELECT id, name, hourly_rate FROM resources WHERE id = ANY($1) AND is_active`

func (q *Queries) ListResourceRates(ctx context.Context, db DBTX, ids []uuid.UUID) ([]Resources, error) {
	rows, err := db.Query(ctx, listResourceRates, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Resources
	for rows.Next() {
		var r Resources
		if err := rows.Scan(&r.ID, &r.Name, &r.HourlyRate); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
