//go:build unit

package config_test

import (
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "datsan")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HOLD_WINDOW", "120s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.Hold.Window)
	assert.Equal(t, 8, cfg.Hold.MaxSlots)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 30*time.Second, cfg.JWT.Leeway)
	assert.Equal(t, "postgres://app:pw@localhost:5432/datsan?sslmode=disable&timezone=Asia/Ho_Chi_Minh", cfg.DB.BuildDSN())
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "test config is valid", mutate: func(*config.Config) {}},
		{name: "zero window", mutate: func(c *config.Config) { c.Hold.Window = 0 }, wantErr: "HOLD_WINDOW"},
		{name: "no slots", mutate: func(c *config.Config) { c.Hold.MaxSlots = 0 }, wantErr: "HOLD_MAX_SLOTS"},
		{name: "bad jwt duration", mutate: func(c *config.Config) { c.JWT.Duration = "forever" }, wantErr: "JWT_DURATION"},
		{name: "zero refund batch", mutate: func(c *config.Config) { c.Worker.RefundBatchSize = 0 }, wantErr: "REFUND_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
