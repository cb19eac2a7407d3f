package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TAAS_API_URL", "https://api.topcoder-dev.com/v5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 3*time.Second, cfg.SettleDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.QuerySyncDelay)
	assert.Equal(t, 30*time.Second, cfg.TaaSAPITimeout)
	assert.Empty(t, cfg.RefreshCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsRelativeAPIURL(t *testing.T) {
	t.Setenv("TAAS_API_URL", "/v5")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestInTestMode(t *testing.T) {
	t.Setenv(TestModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(TestModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
