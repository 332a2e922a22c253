package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"

	"github.com/google/uuid"
)

//go:generate mockgen -source=hold.go -destination=../../../tests/mock/queries/hold_queries_mock.go -package=queries

type HoldQueries interface {
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*HoldView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*HoldView, *Cursor, error)
}

type HoldViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HoldView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]*HoldView, error)
}

// Expirer applies EXPIRE to a hold whose deadline has passed.
type Expirer interface {
	ExpireOverdue(ctx context.Context, holdID uuid.UUID) error
}

type holdQueriesImpl struct {
	repo    HoldViewRepo
	expirer Expirer
	clock   clock.Clock
}

func NewHoldQueries(repo HoldViewRepo, expirer Expirer, clk clock.Clock) HoldQueries {
	return &holdQueriesImpl{repo: repo, expirer: expirer, clock: clk}
}

func (q *holdQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*HoldView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.UserID != actor {
		return nil, errs.ErrHoldNotOwned
	}

	if q.overdue(view) {
		view, err = q.expireAndReload(ctx, view)
		if err != nil {
			return nil, err
		}
	}

	q.fillRemaining(view)
	return view, nil
}

func (q *holdQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*HoldView, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		afterCreatedAt *time.Time
		afterID        *uuid.UUID
	)
	if after != nil && after.After != "" {
		ts, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, errs.Mark(err, errs.ErrDomainValidation)
		}
		afterCreatedAt, afterID = &ts, &id
	}

	// one extra row tells whether another page exists
	rows, err := q.repo.FindByUserID(ctx, userID, afterCreatedAt, afterID, limit+1)
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}

	for i, view := range rows {
		if q.overdue(view) {
			fresh, err := q.expireAndReload(ctx, view)
			if err != nil {
				return nil, nil, err
			}
			rows[i] = fresh
		}
		q.fillRemaining(rows[i])
	}
	return rows, next, nil
}

func (q *holdQueriesImpl) overdue(view *HoldView) bool {
	return view.Status == string(hold.StatusPendingPayment) && !q.clock.Now().Before(view.HoldDeadline)
}

func (q *holdQueriesImpl) expireAndReload(ctx context.Context, view *HoldView) (*HoldView, error) {
	if err := q.expirer.ExpireOverdue(ctx, view.ID); err != nil {
		slog.Warn("lazy expiry failed", "hold_id", view.ID, "error", err)
		return view, nil
	}
	return q.repo.FindByID(ctx, view.ID)
}

func (q *holdQueriesImpl) fillRemaining(view *HoldView) {
	view.RemainingSeconds = 0
	if view.Status != string(hold.StatusPendingPayment) {
		return
	}
	if d := view.HoldDeadline.Sub(q.clock.Now()); d > 0 {
		view.RemainingSeconds = int64((d + time.Second - 1) / time.Second)
	}
}
