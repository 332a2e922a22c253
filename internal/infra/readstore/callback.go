package readstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"
	uq "github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CallbackViewQueries interface {
	ListPaymentCallbacks(ctx context.Context, db queries.DBTX, outcome pgtype.Text, before pgtype.Timestamptz, limit int32) ([]queries.PaymentCallbacks, error)
}

type CallbackReadStore struct {
	queries CallbackViewQueries
	db      queries.DBTX
}

func NewCallbackReadStore(q CallbackViewQueries, db queries.DBTX) *CallbackReadStore {
	return &CallbackReadStore{queries: q, db: db}
}

func (r *CallbackReadStore) FindCallbacks(ctx context.Context, outcome string, before *time.Time, limit int) ([]*uq.PaymentCallbackView, error) {
	var beforeParam pgtype.Timestamptz
	if before != nil {
		beforeParam = pgconv.TimeToPgtype(*before)
	}

	rows, err := r.queries.ListPaymentCallbacks(ctx, r.db, pgconv.StringToPgtype(outcome), beforeParam, int32(limit)) // #nosec G115 -- bounded by ValidateLimit
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list payment callbacks", err)
	}

	result := make([]*uq.PaymentCallbackView, len(rows))
	for i, row := range rows {
		view := &uq.PaymentCallbackView{
			ID:          row.ID,
			Provider:    row.Provider,
			ExternalRef: pgconv.StringPtrFromPgtype(row.ExternalRef),
			Outcome:     row.Outcome,
			PaymentID:   pgconv.StringPtrFromPgtype(row.PaymentID),
			Message:     pgconv.StringPtrFromPgtype(row.Message),
			Result:      row.Result,
			ReceivedAt:  row.ReceivedAt,
		}
		if row.HoldID.Valid {
			id := uuid.UUID(row.HoldID.Bytes)
			view.HoldID = &id
		}
		if err := json.Unmarshal(row.RawQuery, &view.RawQuery); err != nil {
			slog.Warn("unreadable callback query", "callback_id", row.ID, "error", err)
		}
		result[i] = view
	}
	return result, nil
}
