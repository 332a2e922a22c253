package queries

import "context"

const insertRecordIfAbsent = `WITH ins AS (
	INSERT INTO durable_records (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO NOTHING
	RETURNING value
)
SELECT value FROM ins
UNION ALL
SELECT value FROM durable_records WHERE key = $1
LIMIT 1`

// InsertRecordIfAbsent returns the stored value, which is the given one only for the first writer.
func (q *Queries) InsertRecordIfAbsent(ctx context.Context, db DBTX, key string, value []byte) ([]byte, error) {
	var stored []byte
	err := db.QueryRow(ctx, insertRecordIfAbsent, key, value).Scan(&stored)
	return stored, err
}

const getRecord = `SELECT value FROM durable_records WHERE key = $1`

func (q *Queries) GetRecord(ctx context.Context, db DBTX, key string) ([]byte, error) {
	var v []byte
	err := db.QueryRow(ctx, getRecord, key).Scan(&v)
	return v, err
}

const upsertRecord = `INSERT INTO durable_records (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

func (q *Queries) UpsertRecord(ctx context.Context, db DBTX, key string, value []byte) error {
	_, err := db.Exec(ctx, upsertRecord, key, value)
	return err
}

const deleteRecords = `DELETE FROM durable_records WHERE key = ANY($1)`

func (q *Queries) DeleteRecords(ctx context.Context, db DBTX, keys []string) error {
	_, err := db.Exec(ctx, deleteRecords, keys)
	return err
}

const listRecordsByPrefix = `SELECT key, value, created_at FROM durable_records
WHERE starts_with(key, $1) ORDER BY key`

func (q *Queries) ListRecordsByPrefix(ctx context.Context, db DBTX, prefix string) ([]DurableRecords, error) {
	rows, err := db.Query(ctx, listRecordsByPrefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DurableRecords
	for rows.Next() {
		var r DurableRecords
		if err := rows.Scan(&r.Key, &r.Value, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
