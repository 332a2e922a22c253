package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/db"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/migrations"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const migrateTimeout = 30 * time.Second

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if err := migrations.Apply(ctx, pool); err != nil {
			cleanup()
			return nil, errs.Wrap(err, "apply migrations")
		}
		slog.Info("database migrations applied")
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
