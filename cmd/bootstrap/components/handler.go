package components

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/api"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewHoldHandler,
		api.NewCallbackHandler,
		api.NewWalletHandler,
		api.NewAdminHandler,
		middleware.NewAuthMiddleware,
		func(hold *api.HoldHandler, callback *api.CallbackHandler, wallet *api.WalletHandler, admin *api.AdminHandler) handler.Handlers {
			return handler.Handlers{Hold: hold, Callback: callback, Wallet: wallet, Admin: admin}
		},
	),
	fx.Invoke(handler.NewRouter),
)
