package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("TELEGRAM_MASTER_IDS", "1,2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "/api", cfg.HTTP.BasePath)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 2*time.Second, cfg.Wallet.SendLatency)
	assert.Equal(t, []int64{1, 2}, cfg.Telegram.MasterIDs)
	assert.Equal(t, 200, cfg.Marketplace.LogCap)
}
