package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/user"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/api"
	reqdto "github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/dto/request"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/middleware"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Hold     *api.HoldHandler
	Callback *api.CallbackHandler
	Wallet   *api.WalletHandler
	Admin    *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) error {
	if err := reqdto.RegisterValidators(); err != nil {
		return errs.Wrap(err, "register validators")
	}
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
	return nil
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		holds := apiGroup.Group("/holds")
		holds.Use(authMiddleware.RequireAuth())
		{
			addRoutes(holds, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Hold.Create},
				{Method: http.MethodGet, Path: "", Handler: h.Hold.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Hold.Get},
				{Method: http.MethodPost, Path: "/:id/payments", Handler: h.Hold.ChoosePayment},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Hold.Cancel},
			})
		}

		// Gateways call these without a bearer token; VNPay callbacks are signed.
		payments := apiGroup.Group("/payments")
		{
			addRoutes(payments, []route{
				{Method: http.MethodGet, Path: "/callback/:provider", Handler: h.Callback.Handle},
				{Method: http.MethodPost, Path: "/callback/:provider", Handler: h.Callback.Handle},
			})
		}

		wallet := apiGroup.Group("/wallet")
		wallet.Use(authMiddleware.RequireAuth())
		{
			addRoutes(wallet, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Wallet.Balance},
				{Method: http.MethodPost, Path: "/topup", Handler: h.Wallet.TopUp,
					Mw: []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleOwner)}},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/payment-callbacks", Handler: h.Admin.ListCallbacks},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
