package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Allocation-Engine/internal/model"
)

func TestLoad(t *testing.T) {
	t.Run("uses defaults when nothing is set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost:5001", cfg.Server.Addr)
		assert.Equal(t, model.HistoryWindow{Period: model.PeriodYear, Interval: model.IntervalWeek}, cfg.Window)
		assert.Equal(t, ShareModeStored, cfg.Share.Mode)
		assert.Equal(t, 10*time.Second, cfg.Yahoo.Timeout)
		assert.Equal(t, 4, cfg.Refresh.Concurrency)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		t.Setenv("SERVER_HOST", "0.0.0.0")
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("DEFAULT_PERIOD", "M")
		t.Setenv("DEFAULT_INTERVAL", "1d")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("YAHOO_BASE_URL", "http://127.0.0.1:9999/")
		t.Setenv("LOG_PRETTY", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
		assert.Equal(t, model.PeriodMonth, cfg.Window.Period)
		assert.Equal(t, model.IntervalDay, cfg.Window.Interval)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "http://127.0.0.1:9999", cfg.Yahoo.BaseURL)
		assert.True(t, cfg.Log.Pretty)
	})

	t.Run("rejects a weekly period with monthly points", func(t *testing.T) {
		t.Setenv("DEFAULT_PERIOD", "w")
		t.Setenv("DEFAULT_INTERVAL", "1mo")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("token mode requires a key", func(t *testing.T) {
		t.Setenv("SHARE_LINK_MODE", "token")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects unknown share mode", func(t *testing.T) {
		t.Setenv("SHARE_LINK_MODE", "carrier-pigeon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects non-positive concurrency", func(t *testing.T) {
		t.Setenv("REFRESH_CONCURRENCY", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}
