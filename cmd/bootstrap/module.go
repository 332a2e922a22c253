package bootstrap

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	components.PersistenceModule,
	components.GatewayModule,
	components.UseCaseModule,
	components.WorkerModule,
	components.HandlerModule,
)
