package bootstrap

import (
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/errs"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config) (*jwt.Service, error) {
	duration, err := time.ParseDuration(cfg.JWT.Duration)
	if err != nil {
		return nil, errs.Wrap(err, "invalid JWT_DURATION")
	}
	return jwt.NewService(cfg.JWT.Secret, duration,
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithLeeway(cfg.JWT.Leeway),
	), nil
}
