package repository

import (
	"context"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/pgconv"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/shared"
)

type RecordWriteQueries interface {
	InsertRecordIfAbsent(ctx context.Context, db queries.DBTX, key string, value []byte) ([]byte, error)
	GetRecord(ctx context.Context, db queries.DBTX, key string) ([]byte, error)
	UpsertRecord(ctx context.Context, db queries.DBTX, key string, value []byte) error
	DeleteRecords(ctx context.Context, db queries.DBTX, keys []string) error
	ListRecordsByPrefix(ctx context.Context, db queries.DBTX, prefix string) ([]queries.DurableRecords, error)
}

// RecordRepository is the durable key/value store behind hold clocks and pending snapshots.
type RecordRepository struct {
	queries RecordWriteQueries
	db      queries.DBTX
}

func NewRecordRepository(q RecordWriteQueries, db queries.DBTX) *RecordRepository {
	return &RecordRepository{queries: q, db: db}
}

// InsertIfAbsent stores value unless key exists and returns whatever is stored afterwards.
// Under read committed a concurrent insert can hide both branches of the CTE for one
// statement, so a miss is retried once.
func (r *RecordRepository) InsertIfAbsent(ctx context.Context, key string, value []byte) ([]byte, error) {
	var (
		stored []byte
		err    error
	)
	for range 2 {
		stored, err = r.queries.InsertRecordIfAbsent(ctx, r.db, key, value)
		if err == nil {
			return stored, nil
		}
		if !pgconv.IsNoRows(err) {
			break
		}
	}
	return nil, infra.WrapRepoErr("failed to insert record "+key, err)
}

func (r *RecordRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.queries.GetRecord(ctx, r.db, key)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to get record "+key, err)
	}
	return v, nil
}

func (r *RecordRepository) Put(ctx context.Context, key string, value []byte) error {
	if err := r.queries.UpsertRecord(ctx, r.db, key, value); err != nil {
		return infra.WrapRepoErr("failed to put record "+key, err)
	}
	return nil
}

func (r *RecordRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.queries.DeleteRecords(ctx, r.db, keys); err != nil {
		return infra.WrapRepoErr("failed to delete records", err)
	}
	return nil
}

func (r *RecordRepository) ListByPrefix(ctx context.Context, prefix string) ([]shared.Record, error) {
	rows, err := r.queries.ListRecordsByPrefix(ctx, r.db, prefix)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list records", err)
	}

	out := make([]shared.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, shared.Record{Key: row.Key, Value: row.Value, CreatedAt: row.CreatedAt})
	}
	return out, nil
}
