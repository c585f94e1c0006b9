package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Тест идет из internal/infra: config.yaml рядом нет, работают дефолты
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 8090, cfg.Server.Port)
	require.Equal(t, 30*time.Second, cfg.Registry.CacheTTL)
	require.Equal(t, []string{
		"config/agents.json",
		"../config/agents.json",
		"/etc/dashdaddy/agents.json",
	}, cfg.Registry.Paths)
	require.Equal(t, 2*time.Second, cfg.Stream.Interval)
	require.Equal(t, 30*time.Second, cfg.Stream.PingInterval)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REGISTRY_CACHE_TTL", "10s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, 10*time.Second, cfg.Registry.CacheTTL)
}

func TestLoadConfigKeysFromEnvData(t *testing.T) {
	t.Setenv("AUTH_PUBLIC_KEY_DATA", "-----BEGIN PUBLIC KEY-----")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, []byte("-----BEGIN PUBLIC KEY-----"), cfg.Auth.PublicKey)
	require.Empty(t, cfg.Auth.PrivateKey)
}

func TestLoggerLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(LoggerConfig{Level: lvl, Format: "json"})
		require.NoError(t, err, lvl)
		require.NotNil(t, logger)
	}

	_, err := NewLogger(LoggerConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
}
