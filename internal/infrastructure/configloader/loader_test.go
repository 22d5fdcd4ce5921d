package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, uint64(50312), cfg.Network.ChainID)
	assert.Equal(t, "https://dream-rpc.somnia.network", cfg.Network.RPCURL)
	assert.Equal(t, "STT", cfg.Network.NativeSymbol)
	assert.Equal(t, 10, cfg.Session.LoadingTimeoutSeconds)
	assert.Equal(t, 30, cfg.Session.RefreshInterval())
	assert.Equal(t, 10, cfg.Session.TransactionLimit)
	assert.True(t, cfg.Session.PlaceholdersEnabled())
	assert.Equal(t, 30, cfg.TokenPriceSvc.MaxTokensPerBatchRequest)
	assert.Equal(t, int64(10000), cfg.TokenPriceSvc.RequestTimeoutMillis)
	assert.Empty(t, cfg.NATS.URL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestParse_ExplicitZeroRefreshDisables(t *testing.T) {
	cfg, err := Parse([]byte("session:\n  refreshIntervalSeconds: 0\n  usePlaceholderData: false\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Session.RefreshInterval())
	assert.False(t, cfg.Session.PlaceholdersEnabled())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SOMNIA_RPC_URL", "https://rpc.example")
	t.Setenv("SOMNIA_WS_URL", "wss://rpc.example/ws")
	t.Setenv("SOMNIA_CHAIN_ID", "1234")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Parse([]byte("network:\n  rpcURL: https://from-file\nserver:\n  port: \"7000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example", cfg.Network.RPCURL)
	assert.Equal(t, "wss://rpc.example/ws", cfg.Network.WSURL)
	assert.Equal(t, uint64(1234), cfg.Network.ChainID)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestParse_InvalidChainID(t *testing.T) {
	t.Setenv("SOMNIA_CHAIN_ID", "not-a-number")

	_, err := Parse([]byte("{}"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("dexScreener:\n  baseURL: http://localhost:9999\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.DEXScreener.BaseURL)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
