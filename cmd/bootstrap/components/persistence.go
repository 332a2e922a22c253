package components

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/db"
	sqlq "github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/queries"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/readstore"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/repository"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/uow"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/holdclock"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewSQLQueries,
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Hold
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.HoldViewQueries)),
		),
		fx.Annotate(
			readstore.NewHoldReadStore,
			fx.As(new(queries.HoldViewRepo)),
		),
		// Wallet
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.WalletViewQueries)),
		),
		fx.Annotate(
			readstore.NewWalletReadStore,
			fx.As(new(queries.WalletViewRepo)),
		),
		// Payment callbacks
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(readstore.CallbackViewQueries)),
		),
		fx.Annotate(
			readstore.NewCallbackReadStore,
			fx.As(new(queries.CallbackViewRepo)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		// UnitOfWork; transactional repositories are built per transaction
		uow.NewPostgresUoW,
		// Hold clock records live outside any request transaction
		fx.Annotate(
			NewSQLQueries,
			fx.As(new(repository.RecordWriteQueries)),
		),
		fx.Annotate(
			repository.NewRecordRepository,
			fx.As(new(holdclock.Store)),
		),
	),
)

func NewSQLQueries(_ *pgxpool.Pool) *sqlq.Queries {
	return sqlq.New()
}

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
