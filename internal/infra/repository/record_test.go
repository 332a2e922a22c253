//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecordWriteQueries struct {
	mock.Mock
}

func (m *MockRecordWriteQueries) InsertRecordIfAbsent(ctx context.Context, db queries.DBTX, key string, value []byte) ([]byte, error) {
	args := m.Called(ctx, db, key, value)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

func (m *MockRecordWriteQueries) GetRecord(ctx context.Context, db queries.DBTX, key string) ([]byte, error) {
	args := m.Called(ctx, db, key)
	v, _ := args.Get(0).([]byte)
	return v, args.Error(1)
}

func (m *MockRecordWriteQueries) UpsertRecord(ctx context.Context, db queries.DBTX, key string, value []byte) error {
	args := m.Called(ctx, db, key, value)
	return args.Error(0)
}

func (m *MockRecordWriteQueries) DeleteRecords(ctx context.Context, db queries.DBTX, keys []string) error {
	args := m.Called(ctx, db, keys)
	return args.Error(0)
}

func (m *MockRecordWriteQueries) ListRecordsByPrefix(ctx context.Context, db queries.DBTX, prefix string) ([]queries.DurableRecords, error) {
	args := m.Called(ctx, db, prefix)
	v, _ := args.Get(0).([]queries.DurableRecords)
	return v, args.Error(1)
}

func TestRecordRepository_InsertIfAbsent(t *testing.T) {
	const key = "payment_start_time_abc"
	mine := []byte(`{"started_at":"2030-05-31T10:00:00Z"}`)
	theirs := []byte(`{"started_at":"2030-05-31T09:59:00Z"}`)

	tests := []struct {
		name      string
		results   [][]any
		want      []byte
		wantKind  infra.RepositoryErrorKind
		wantCalls int
	}{
		{
			name:      "first writer keeps its value",
			results:   [][]any{{mine, nil}},
			want:      mine,
			wantCalls: 1,
		},
		{
			name:      "later writer gets stored value",
			results:   [][]any{{theirs, nil}},
			want:      theirs,
			wantCalls: 1,
		},
		{
			name:      "concurrent miss is retried",
			results:   [][]any{{nil, pgx.ErrNoRows}, {theirs, nil}},
			want:      theirs,
			wantCalls: 2,
		},
		{
			name:      "persistent miss surfaces not found",
			results:   [][]any{{nil, pgx.ErrNoRows}, {nil, pgx.ErrNoRows}},
			wantKind:  infra.KindNotFound,
			wantCalls: 2,
		},
		{
			name:      "database error is not retried",
			results:   [][]any{{nil, assert.AnError}},
			wantKind:  infra.KindDBFailure,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockRecordWriteQueries)
			mockDB := new(MockDBTX)
			for _, res := range tt.results {
				mockQueries.On("InsertRecordIfAbsent", mock.Anything, mockDB, key, mine).Return(res...).Once()
			}

			got, err := NewRecordRepository(mockQueries, mockDB).InsertIfAbsent(context.Background(), key, mine)

			if tt.wantKind != "" {
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			mockQueries.AssertNumberOfCalls(t, "InsertRecordIfAbsent", tt.wantCalls)
		})
	}
}

func TestRecordRepository_Delete(t *testing.T) {
	mockQueries := new(MockRecordWriteQueries)
	mockDB := new(MockDBTX)
	repo := NewRecordRepository(mockQueries, mockDB)

	require.NoError(t, repo.Delete(context.Background()))
	mockQueries.AssertNotCalled(t, "DeleteRecords", mock.Anything, mock.Anything, mock.Anything)

	mockQueries.On("DeleteRecords", mock.Anything, mockDB, []string{"a", "b"}).Return(nil)
	require.NoError(t, repo.Delete(context.Background(), "a", "b"))
	mockQueries.AssertExpectations(t)
}

func TestRecordRepository_ListByPrefix(t *testing.T) {
	created := time.Date(2030, 5, 31, 10, 0, 0, 0, time.UTC)
	mockQueries := new(MockRecordWriteQueries)
	mockDB := new(MockDBTX)
	mockQueries.On("ListRecordsByPrefix", mock.Anything, mockDB, "payment_start_time_").Return([]queries.DurableRecords{
		{Key: "payment_start_time_1", Value: []byte(`{}`), CreatedAt: created},
	}, nil)

	got, err := NewRecordRepository(mockQueries, mockDB).ListByPrefix(context.Background(), "payment_start_time_")

	require.NoError(t, err)
	want := []shared.Record{{Key: "payment_start_time_1", Value: []byte(`{}`), CreatedAt: created}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListByPrefix mismatch (-want +got):\n%s", diff)
	}
}
