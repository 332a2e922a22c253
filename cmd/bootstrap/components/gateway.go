package components

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/infra/gateway"

	"go.uber.org/fx"
)

// GatewayModule provides the MoMo and VNPay clients and their callback parsers.
var GatewayModule = fx.Module("gateway",
	fx.Provide(
		gateway.NewProviders,
		gateway.NewParsers,
	),
)
