package queries

import (
	"context"
	"time"
)

//go:generate mockgen -source=callback.go -destination=../../../tests/mock/queries/callback_queries_mock.go -package=queries

// CallbackQueries lists recorded gateway callbacks for operators.
type CallbackQueries interface {
	List(ctx context.Context, outcome string, before *time.Time, limit int) ([]*PaymentCallbackView, error)
}

type CallbackViewRepo interface {
	FindCallbacks(ctx context.Context, outcome string, before *time.Time, limit int) ([]*PaymentCallbackView, error)
}

type callbackQueriesImpl struct {
	repo CallbackViewRepo
}

func NewCallbackQueries(repo CallbackViewRepo) CallbackQueries {
	return &callbackQueriesImpl{repo: repo}
}

func (q *callbackQueriesImpl) List(ctx context.Context, outcome string, before *time.Time, limit int) ([]*PaymentCallbackView, error) {
	return q.repo.FindCallbacks(ctx, outcome, before, ValidateLimit(limit))
}
