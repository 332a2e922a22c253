//go:build unit

package readstore

import (
	"context"
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	uq "github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHoldViewQueries struct {
	mock.Mock
}

func (m *MockHoldViewQueries) GetHold(ctx context.Context, db queries.DBTX, id uuid.UUID) (queries.Holds, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(queries.Holds), args.Error(1)
}

func (m *MockHoldViewQueries) ListHoldSlots(ctx context.Context, db queries.DBTX, holdID uuid.UUID) ([]queries.HoldSlots, error) {
	args := m.Called(ctx, db, holdID)
	v, _ := args.Get(0).([]queries.HoldSlots)
	return v, args.Error(1)
}

func (m *MockHoldViewQueries) ListHoldsByUser(ctx context.Context, db queries.DBTX, arg queries.ListHoldsByUserParams) ([]queries.Holds, error) {
	args := m.Called(ctx, db, arg)
	v, _ := args.Get(0).([]queries.Holds)
	return v, args.Error(1)
}

func (m *MockHoldViewQueries) ListSlotsForHolds(ctx context.Context, db queries.DBTX, holdIDs []uuid.UUID) ([]queries.HoldSlots, error) {
	args := m.Called(ctx, db, holdIDs)
	v, _ := args.Get(0).([]queries.HoldSlots)
	return v, args.Error(1)
}

var t0 = time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC)

func holdRow(id, userID uuid.UUID) queries.Holds {
	return queries.Holds{
		ID:             id,
		UserID:         userID,
		AmountDue:      200000,
		Status:         "CANCELLED",
		HoldStartedAt:  t0,
		HoldDeadline:   t0.Add(5 * time.Minute),
		PaymentChannel: pgtype.Text{String: "wallet", Valid: true},
		CapturedAmount: 200000,
		RefundAmount:   pgtype.Int8{Int64: 200000, Valid: true},
		RefundStatus:   pgtype.Text{String: "COMPLETED", Valid: true},
		CreatedAt:      t0,
		UpdatedAt:      t0.Add(time.Minute),
	}
}

func slotRow(holdID, resourceID uuid.UUID, pos int32, startMin, endMin int64) queries.HoldSlots {
	return queries.HoldSlots{
		HoldID:     holdID,
		Position:   pos,
		ResourceID: resourceID,
		SlotDate:   time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime:  pgtype.Time{Microseconds: startMin * 60_000_000, Valid: true},
		EndTime:    pgtype.Time{Microseconds: endMin * 60_000_000, Valid: true},
	}
}

func TestHoldReadStore_FindByID(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	resourceID := uuid.New()

	t.Run("maps row and slots", func(t *testing.T) {
		mockQueries := new(MockHoldViewQueries)
		mockQueries.On("GetHold", mock.Anything, mock.Anything, id).Return(holdRow(id, userID), nil)
		mockQueries.On("ListHoldSlots", mock.Anything, mock.Anything, id).
			Return([]queries.HoldSlots{slotRow(id, resourceID, 0, 18*60, 19*60+30)}, nil)

		got, err := NewHoldReadStore(mockQueries, nil).FindByID(context.Background(), id)

		require.NoError(t, err)
		channel := "wallet"
		want := &uq.HoldView{
			ID:             id,
			UserID:         userID,
			Status:         "CANCELLED",
			AmountDue:      200000,
			Slots:          []uq.SlotView{{ResourceID: resourceID, Date: "2030-06-01", Start: "18:00", End: "19:30"}},
			PaymentChannel: &channel,
			CapturedAmount: 200000,
			HoldStartedAt:  t0,
			HoldDeadline:   t0.Add(5 * time.Minute),
			Refund:         &uq.RefundView{Amount: 200000, Status: "COMPLETED"},
			CreatedAt:      t0,
			UpdatedAt:      t0.Add(time.Minute),
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("FindByID mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mockQueries := new(MockHoldViewQueries)
		mockQueries.On("GetHold", mock.Anything, mock.Anything, id).Return(queries.Holds{}, pgx.ErrNoRows)

		_, err := NewHoldReadStore(mockQueries, nil).FindByID(context.Background(), id)

		assert.True(t, errs.Is(err, errs.ErrHoldNotFound))
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestHoldReadStore_FindByUserID(t *testing.T) {
	userID := uuid.New()
	resourceID := uuid.New()
	a, b := uuid.New(), uuid.New()
	after := t0.Add(time.Hour)
	afterID := uuid.New()

	mockQueries := new(MockHoldViewQueries)
	mockQueries.On("ListHoldsByUser", mock.Anything, mock.Anything, mock.MatchedBy(func(p queries.ListHoldsByUserParams) bool {
		return p.UserID == userID && p.Limit == 3 && p.AfterCreatedAt.Valid && p.AfterID.Bytes == afterID
	})).Return([]queries.Holds{holdRow(a, userID), holdRow(b, userID)}, nil)
	mockQueries.On("ListSlotsForHolds", mock.Anything, mock.Anything, []uuid.UUID{a, b}).Return([]queries.HoldSlots{
		slotRow(a, resourceID, 0, 8*60, 9*60),
		slotRow(b, resourceID, 0, 10*60, 11*60),
		slotRow(b, resourceID, 1, 11*60, 12*60),
	}, nil)

	got, err := NewHoldReadStore(mockQueries, nil).FindByUserID(context.Background(), userID, &after, &afterID, 3)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0].Slots, 1)
	assert.Len(t, got[1].Slots, 2)
	assert.Equal(t, "11:00", got[1].Slots[1].Start)
}
