package bootstrap

import (
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		NewConfig,
	),
)

// NewConfig loads from the environment and fails fast on unusable values.
func NewConfig() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
