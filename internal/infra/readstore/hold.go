package readstore

import (
	"context"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/repository/converter"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"
	uq "github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type HoldViewQueries interface {
	GetHold(ctx context.Context, db queries.DBTX, id uuid.UUID) (queries.Holds, error)
	ListHoldSlots(ctx context.Context, db queries.DBTX, holdID uuid.UUID) ([]queries.HoldSlots, error)
	ListHoldsByUser(ctx context.Context, db queries.DBTX, arg queries.ListHoldsByUserParams) ([]queries.Holds, error)
	ListSlotsForHolds(ctx context.Context, db queries.DBTX, holdIDs []uuid.UUID) ([]queries.HoldSlots, error)
}

type HoldReadStore struct {
	queries HoldViewQueries
	db      queries.DBTX
}

func NewHoldReadStore(q HoldViewQueries, db queries.DBTX) *HoldReadStore {
	return &HoldReadStore{
		queries: q,
		db:      db,
	}
}

func (r *HoldReadStore) FindByID(ctx context.Context, id uuid.UUID) (*uq.HoldView, error) {
	row, err := r.queries.GetHold(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, errs.Mark(infra.WrapRepoErr("hold not found", err, infra.KindNotFound), errs.ErrHoldNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find hold by ID", err)
	}

	slots, err := r.queries.ListHoldSlots(ctx, r.db, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find hold slots", err)
	}

	return toHoldView(row, slots), nil
}

func (r *HoldReadStore) FindByUserID(ctx context.Context, userID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]*uq.HoldView, error) {
	params := queries.ListHoldsByUserParams{
		UserID: userID,
		Limit:  int32(limit), // #nosec G115 -- bounded by ValidateLimit
	}
	if afterCreatedAt != nil && afterID != nil {
		params.AfterCreatedAt = pgconv.TimeToPgtype(*afterCreatedAt)
		params.AfterID = pgtype.UUID{Bytes: *afterID, Valid: true}
	}

	rows, err := r.queries.ListHoldsByUser(ctx, r.db, params)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list holds", err)
	}
	if len(rows) == 0 {
		return []*uq.HoldView{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	slotRows, err := r.queries.ListSlotsForHolds(ctx, r.db, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list hold slots", err)
	}
	byHold := make(map[uuid.UUID][]queries.HoldSlots, len(rows))
	for _, s := range slotRows {
		byHold[s.HoldID] = append(byHold[s.HoldID], s)
	}

	result := make([]*uq.HoldView, len(rows))
	for i, row := range rows {
		result[i] = toHoldView(row, byHold[row.ID])
	}
	return result, nil
}

func toHoldView(row queries.Holds, slots []queries.HoldSlots) *uq.HoldView {
	view := &uq.HoldView{
		ID:             row.ID,
		UserID:         row.UserID,
		Status:         row.Status,
		AmountDue:      row.AmountDue,
		Slots:          make([]uq.SlotView, len(slots)),
		PaymentChannel: pgconv.StringPtrFromPgtype(row.PaymentChannel),
		ExternalRef:    pgconv.StringPtrFromPgtype(row.ExternalRef),
		CapturedAmount: row.CapturedAmount,
		HoldStartedAt:  row.HoldStartedAt,
		HoldDeadline:   row.HoldDeadline,
		DeclineReason:  pgconv.StringPtrFromPgtype(row.DeclineReason),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	for i, s := range slots {
		view.Slots[i] = uq.SlotView{
			ResourceID: s.ResourceID,
			Date:       s.SlotDate.Format("2006-01-02"),
			Start:      converter.ClockFromPgtype(s.StartTime),
			End:        converter.ClockFromPgtype(s.EndTime),
		}
	}
	if amount := pgconv.Int64PtrFromPgtype(row.RefundAmount); amount != nil && row.RefundStatus.Valid {
		view.Refund = &uq.RefundView{Amount: *amount, Status: row.RefundStatus.String}
	}
	return view
}
