package migrations

import (
	"context"
	"embed"
	"sort"
	"strings"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var migrationFiles embed.FS

const advisoryLockID int64 = 702419301

// Apply runs embedded SQL files in name order, each once, under an advisory lock.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		return errs.Wrap(err, "read migrations")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return errs.Wrap(err, "acquire conn")
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockID); err != nil {
		return errs.Wrap(err, "acquire migration lock")
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockID)
	}()

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return errs.Wrap(err, "ensure schema_migrations")
	}

	for _, name := range names {
		var applied bool
		if err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied); err != nil {
			return errs.Wrapf(err, "check migration %s", name)
		}
		if applied {
			continue
		}

		raw, err := migrationFiles.ReadFile(name)
		if err != nil {
			return errs.Wrapf(err, "read migration %s", name)
		}
		sql := strings.TrimSpace(string(raw))
		if sql == "" {
			continue
		}

		tx, err := conn.Begin(ctx)
		if err != nil {
			return errs.Wrapf(err, "begin migration %s", name)
		}
		if _, err := tx.Exec(ctx, sql); err != nil {
			_ = tx.Rollback(ctx)
			return errs.Wrapf(err, "exec migration %s", name)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return errs.Wrapf(err, "record migration %s", name)
		}
		if err := tx.Commit(ctx); err != nil {
			return errs.Wrapf(err, "commit migration %s", name)
		}
	}
	return nil
}
