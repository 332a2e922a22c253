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

type HoldWriteQueries interface {
	CreateHold(ctx context.Context, db queries.DBTX, h queries.Holds) error
	InsertHoldSlot(ctx context.Context, db queries.DBTX, s queries.HoldSlots) error
	GetHoldForUpdate(ctx context.Context, db queries.DBTX, id uuid.UUID) (queries.Holds, error)
	GetHoldByExternalRefForUpdate(ctx context.Context, db queries.DBTX, ref string) (queries.Holds, error)
	ListHoldSlots(ctx context.Context, db queries.DBTX, holdID uuid.UUID) ([]queries.HoldSlots, error)
	UpdateHold(ctx context.Context, db queries.DBTX, arg queries.UpdateHoldParams) (int64, error)
	ListOverdueHolds(ctx context.Context, db queries.DBTX, now time.Time, limit int32) ([]uuid.UUID, error)
}

type HoldRepository struct {
	queries HoldWriteQueries
	db      queries.DBTX
}

func NewHoldRepository(q HoldWriteQueries, db queries.DBTX) *HoldRepository {
	return &HoldRepository{
		queries: q,
		db:      db,
	}
}

func (r *HoldRepository) Create(ctx context.Context, h *hold.BookingHold) error {
	slots, err := converter.SlotsToInfra(h)
	if err != nil {
		return infra.WrapRepoErr("failed to convert hold slots", err, infra.KindConflict)
	}

	if err := r.queries.CreateHold(ctx, r.db, converter.HoldToInfra(h)); err != nil {
		return infra.WrapRepoErr("failed to create hold", err)
	}
	for _, s := range slots {
		if err := r.queries.InsertHoldSlot(ctx, r.db, s); err != nil {
			return infra.WrapRepoErr("failed to insert hold slot", err)
		}
	}
	return nil
}

func (r *HoldRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*hold.BookingHold, error) {
	row, err := r.queries.GetHoldForUpdate(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock hold", err)
	}
	return r.load(ctx, row)
}

func (r *HoldRepository) FindByExternalRefForUpdate(ctx context.Context, externalRef string) (*hold.BookingHold, error) {
	row, err := r.queries.GetHoldByExternalRefForUpdate(ctx, r.db, externalRef)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to lock hold by external ref", err)
	}
	return r.load(ctx, row)
}

func (r *HoldRepository) load(ctx context.Context, row queries.Holds) (*hold.BookingHold, error) {
	slots, err := r.queries.ListHoldSlots(ctx, r.db, row.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load hold slots", err)
	}
	h, err := converter.HoldToDomain(row, slots)
	if err != nil {
		return nil, infra.WrapRepoErr("stored hold is invalid", err, infra.KindDBFailure)
	}
	return h, nil
}

func (r *HoldRepository) Update(ctx context.Context, h *hold.BookingHold) error {
	n, err := r.queries.UpdateHold(ctx, r.db, converter.HoldToUpdateParams(h))
	if err != nil {
		return infra.WrapRepoErr("failed to update hold", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("hold to update not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *HoldRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	ids, err := r.queries.ListOverdueHolds(ctx, r.db, now, int32(limit)) // #nosec G115 -- small batch size
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list overdue holds", err)
	}
	return ids, nil
}
