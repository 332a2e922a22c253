//go:build unit

package repository

import (
	"context"
	"testing"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/hold"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSlotWriteQueries struct {
	mock.Mock
}

func (m *MockSlotWriteQueries) InsertSlotLock(ctx context.Context, db queries.DBTX, arg queries.InsertSlotLockParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockSlotWriteQueries) MarkSlotLocksBooked(ctx context.Context, db queries.DBTX, holdID uuid.UUID) (int64, error) {
	args := m.Called(ctx, db, holdID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSlotWriteQueries) DeleteHeldSlotLocks(ctx context.Context, db queries.DBTX, holdID uuid.UUID) (int64, error) {
	args := m.Called(ctx, db, holdID)
	return args.Get(0).(int64), args.Error(1)
}

func TestSlotRepository_Acquire(t *testing.T) {
	resourceID := uuid.New()
	holdID := uuid.New()
	slot, err := hold.NewSlotRef(resourceID, "2030-05-31", "18:00", "19:30")
	require.NoError(t, err)

	tests := []struct {
		name     string
		mockErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "success"},
		{
			name:     "primary key collision",
			mockErr:  &pgconn.PgError{Code: "23505"},
			wantKind: infra.KindDuplicateKey,
		},
		{
			name:     "overlapping range",
			mockErr:  &pgconn.PgError{Code: "23P01"},
			wantKind: infra.KindDuplicateKey,
		},
		{
			name:     "database error",
			mockErr:  assert.AnError,
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockSlotWriteQueries)
			mockDB := new(MockDBTX)
			mockQueries.On("InsertSlotLock", mock.Anything, mockDB, mock.MatchedBy(func(p queries.InsertSlotLockParams) bool {
				return p.ResourceID == resourceID && p.HoldID == holdID &&
					p.SlotDate.Format("2006-01-02") == "2030-05-31" &&
					p.StartTime.Microseconds == 18*3600*1_000_000 &&
					p.EndTime.Microseconds == (19*3600+30*60)*1_000_000
			})).Return(tt.mockErr)

			repo := NewSlotRepository(mockQueries, mockDB)
			err := repo.Acquire(context.Background(), holdID, []hold.SlotRef{slot})

			if tt.wantKind == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			}
			mockQueries.AssertExpectations(t)
		})
	}
}

func TestSlotRepository_RetainAndRelease(t *testing.T) {
	holdID := uuid.New()
	mockQueries := new(MockSlotWriteQueries)
	mockDB := new(MockDBTX)
	mockQueries.On("MarkSlotLocksBooked", mock.Anything, mockDB, holdID).Return(int64(2), nil)
	mockQueries.On("DeleteHeldSlotLocks", mock.Anything, mockDB, holdID).Return(int64(0), assert.AnError)

	repo := NewSlotRepository(mockQueries, mockDB)

	assert.NoError(t, repo.Retain(context.Background(), holdID))
	err := repo.Release(context.Background(), holdID)
	assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	mockQueries.AssertExpectations(t)
}
