package repository

import (
	"context"
	"encoding/json"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgtype"
)

type CallbackWriteQueries interface {
	CreatePaymentCallback(ctx context.Context, db queries.DBTX, c queries.PaymentCallbacks) error
}

type CallbackRepository struct {
	queries CallbackWriteQueries
	db      queries.DBTX
}

func NewCallbackRepository(q CallbackWriteQueries, db queries.DBTX) *CallbackRepository {
	return &CallbackRepository{queries: q, db: db}
}

func (r *CallbackRepository) Record(ctx context.Context, rec shared.CallbackRecord) error {
	raw, err := json.Marshal(rec.RawQuery)
	if err != nil {
		return infra.WrapRepoErr("failed to encode callback query", err, infra.KindConflict)
	}

	row := queries.PaymentCallbacks{
		Provider:    rec.Provider,
		ExternalRef: pgconv.StringToPgtype(rec.ExternalRef),
		Outcome:     rec.Outcome,
		PaymentID:   pgconv.StringToPgtype(rec.PaymentID),
		Message:     pgconv.StringToPgtype(rec.Message),
		Result:      rec.Result,
		RawQuery:    raw,
		ReceivedAt:  rec.ReceivedAt,
	}
	if rec.HoldID != nil {
		row.HoldID = pgtype.UUID{Bytes: *rec.HoldID, Valid: true}
	}

	if err := r.queries.CreatePaymentCallback(ctx, r.db, row); err != nil {
		return infra.WrapRepoErr("failed to record payment callback", err)
	}
	return nil
}
