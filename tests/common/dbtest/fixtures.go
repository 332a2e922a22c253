//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by *pgxpool.Pool and pgx.Tx.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateTestResource inserts an active court with the given hourly rate.
func CreateTestResource(t *testing.T, db DBLike, name string, hourlyRate int64) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(context.Background(),
		"INSERT INTO resources (name, hourly_rate) VALUES ($1, $2) RETURNING id", name, hourlyRate).Scan(&id)
	require.NoError(t, err)
	return id
}

func DeactivateResource(t *testing.T, db DBLike, id uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(), "UPDATE resources SET is_active = false WHERE id = $1", id)
	require.NoError(t, err)
}

// FundWallet credits a wallet, creating it on first use.
func FundWallet(t *testing.T, db DBLike, userID uuid.UUID, amount int64) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO wallets (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance`, userID, amount)
	require.NoError(t, err)
}

// WalletBalance returns 0 for a user without a wallet row.
func WalletBalance(t *testing.T, db DBLike, userID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(context.Background(),
		"SELECT COALESCE((SELECT balance FROM wallets WHERE user_id = $1), 0)", userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

func HoldStatus(t *testing.T, db DBLike, holdID uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM holds WHERE id = $1", holdID).Scan(&status)
	require.NoError(t, err)
	return status
}

func CountSlotLocks(t *testing.T, db DBLike, holdID uuid.UUID) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM slot_locks WHERE hold_id = $1", holdID).Scan(&n)
	require.NoError(t, err)
	return n
}

// RecordExists reports whether a durable hold record is present under key.
func RecordExists(t *testing.T, db DBLike, key string) bool {
	t.Helper()

	var ok bool
	err := db.QueryRow(context.Background(), "SELECT EXISTS (SELECT 1 FROM durable_records WHERE key = $1)", key).Scan(&ok)
	require.NoError(t, err)
	return ok
}

// ForceDeadline moves a hold's deadline, simulating an elapsed window.
func ForceDeadline(t *testing.T, db DBLike, holdID uuid.UUID, deadline time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(), "UPDATE holds SET hold_deadline = $2 WHERE id = $1", holdID, deadline)
	require.NoError(t, err)
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables except the migration ledger
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
