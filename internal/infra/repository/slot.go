package repository

import (
	"context"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/repository/converter"

	"github.com/google/uuid"
)

type SlotWriteQueries interface {
	InsertSlotLock(ctx context.Context, db queries.DBTX, arg queries.InsertSlotLockParams) error
	MarkSlotLocksBooked(ctx context.Context, db queries.DBTX, holdID uuid.UUID) (int64, error)
	DeleteHeldSlotLocks(ctx context.Context, db queries.DBTX, holdID uuid.UUID) (int64, error)
}

// SlotRepository owns slot inventory exclusivity through slot_locks.
type SlotRepository struct {
	queries SlotWriteQueries
	db      queries.DBTX
}

func NewSlotRepository(q SlotWriteQueries, db queries.DBTX) *SlotRepository {
	return &SlotRepository{queries: q, db: db}
}

// Acquire fails with KindDuplicateKey when any slot overlaps a live lock.
func (r *SlotRepository) Acquire(ctx context.Context, holdID uuid.UUID, slots []hold.SlotRef) error {
	for _, s := range slots {
		date, err := time.Parse("2006-01-02", s.Date())
		if err != nil {
			return infra.WrapRepoErr("invalid slot date", err, infra.KindConflict)
		}
		start, err := converter.ClockToPgtype(s.Start())
		if err != nil {
			return infra.WrapRepoErr("invalid slot start", err, infra.KindConflict)
		}
		end, err := converter.ClockToPgtype(s.End())
		if err != nil {
			return infra.WrapRepoErr("invalid slot end", err, infra.KindConflict)
		}
		err = r.queries.InsertSlotLock(ctx, r.db, queries.InsertSlotLockParams{
			ResourceID: s.ResourceID(),
			SlotDate:   date,
			StartTime:  start,
			EndTime:    end,
			HoldID:     holdID,
		})
		if err != nil {
			return infra.WrapRepoErr("failed to lock slot", err)
		}
	}
	return nil
}

func (r *SlotRepository) Retain(ctx context.Context, holdID uuid.UUID) error {
	if _, err := r.queries.MarkSlotLocksBooked(ctx, r.db, holdID); err != nil {
		return infra.WrapRepoErr("failed to retain slots", err)
	}
	return nil
}

func (r *SlotRepository) Release(ctx context.Context, holdID uuid.UUID) error {
	if _, err := r.queries.DeleteHeldSlotLocks(ctx, r.db, holdID); err != nil {
		return infra.WrapRepoErr("failed to release slots", err)
	}
	return nil
}
