//go:build unit

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/db"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/clock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC)

// stubTx overrides only the repositories a worker touches.
type stubTx struct {
	shared.Tx
	holds   shared.HoldRepository
	refunds shared.RefundJobRepository
}

func (t stubTx) Holds() shared.HoldRepository        { return t.holds }
func (t stubTx) Refunds() shared.RefundJobRepository { return t.refunds }

type stubUoW struct {
	shared.UnitOfWork
	tx stubTx
}

func (u stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u stubUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

type mockHolds struct {
	shared.HoldRepository
	mock.Mock
}

func (m *mockHolds) ListOverdue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, now, limit)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type mockRefunds struct {
	shared.RefundJobRepository
	mock.Mock
}

func (m *mockRefunds) ClaimDue(ctx context.Context, now time.Time, limit int) ([]shared.RefundJob, error) {
	args := m.Called(ctx, now, limit)
	jobs, _ := args.Get(0).([]shared.RefundJob)
	return jobs, args.Error(1)
}

func (m *mockRefunds) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, next time.Time, giveUp bool) error {
	return m.Called(ctx, id, lastError, next, giveUp).Error(0)
}

type mockExpirer struct{ mock.Mock }

func (m *mockExpirer) ExpireOverdue(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Issue(ctx context.Context, id uuid.UUID) (*hold.Refund, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*hold.Refund)
	return r, args.Error(1)
}

func testConfig() config.Config {
	cfg := config.NewTestConfig()
	cfg.Worker.RefundInterval = time.Minute
	cfg.Worker.RefundMaxAttempts = 3
	cfg.Worker.RefundBatchSize = 10
	return cfg
}

func TestExpirySweeper_RunOnce(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(t0)
	a, b := uuid.New(), uuid.New()

	holds := new(mockHolds)
	holds.On("ListOverdue", mock.Anything, t0, sweepBatchSize).Return([]uuid.UUID{a, b}, nil)
	expirer := new(mockExpirer)
	expirer.On("ExpireOverdue", mock.Anything, a).Return(nil)
	expirer.On("ExpireOverdue", mock.Anything, b).Return(errors.New("lock timeout"))

	w := NewExpirySweeper(stubUoW{tx: stubTx{holds: holds}}, expirer, clk, testConfig())
	n, err := w.RunOnce(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	holds.AssertExpectations(t)
	expirer.AssertExpectations(t)
}

func TestExpirySweeper_ListFailure(t *testing.T) {
	holds := new(mockHolds)
	holds.On("ListOverdue", mock.Anything, t0, sweepBatchSize).Return(nil, errors.New("db down"))

	w := NewExpirySweeper(stubUoW{tx: stubTx{holds: holds}}, new(mockExpirer), clock.NewMockClock(t0), testConfig())
	_, err := w.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRefundWorker_RunOnce(t *testing.T) {
	amount, _ := hold.NewMoney(180000)
	completed := hold.NewRefund(amount, hold.RefundCompleted)
	pending := hold.NewRefund(amount, hold.RefundPending)

	okJob := shared.RefundJob{ID: uuid.New(), HoldID: uuid.New(), Amount: 180000}
	retryJob := shared.RefundJob{ID: uuid.New(), HoldID: uuid.New(), Amount: 180000, Attempts: 1}
	lastJob := shared.RefundJob{ID: uuid.New(), HoldID: uuid.New(), Amount: 180000, Attempts: 2}
	busyJob := shared.RefundJob{ID: uuid.New(), HoldID: uuid.New(), Amount: 180000}

	refunds := new(mockRefunds)
	refunds.On("ClaimDue", mock.Anything, t0, 10).Return([]shared.RefundJob{okJob, retryJob, lastJob, busyJob}, nil)
	refunds.On("MarkFailed", mock.Anything, retryJob.ID, "gateway timeout", t0.Add(2*time.Minute), false).Return(nil)
	refunds.On("MarkFailed", mock.Anything, lastJob.ID, "refund still pending", t0.Add(4*time.Minute), true).Return(nil)

	issuer := new(mockIssuer)
	issuer.On("Issue", mock.Anything, okJob.HoldID).Return(&completed, nil)
	issuer.On("Issue", mock.Anything, retryJob.HoldID).Return(&pending, errors.New("gateway timeout"))
	issuer.On("Issue", mock.Anything, lastJob.HoldID).Return(&pending, nil)
	// leased by the post-commit issuer: no failure is recorded
	issuer.On("Issue", mock.Anything, busyJob.HoldID).Return(&pending, errs.ErrRefundInFlight)

	w := NewRefundWorker(stubUoW{tx: stubTx{refunds: refunds}}, issuer, clock.NewMockClock(t0), testConfig())
	n, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	refunds.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

func TestRefundWorker_Backoff(t *testing.T) {
	w := NewRefundWorker(stubUoW{}, new(mockIssuer), clock.NewMockClock(t0), testConfig())

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{5, 16 * time.Minute},
		{7, time.Hour},
		{30, time.Hour},
	}
	for _, tt := range tests {
		assert.Equal(t, t0.Add(tt.want), w.nextRun(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestLoop_StartStop(t *testing.T) {
	ticks := make(chan struct{}, 10)
	l := newLoop("test", time.Millisecond, func(context.Context) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	l.Start()
	l.Start()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("loop never ticked")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Stop(ctx))
	require.NoError(t, l.Stop(ctx))
}
