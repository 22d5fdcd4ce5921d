package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/pkg/logger"
)

func TestTokenProvider_CachesCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"chainId": 50312, "address": "0x2222222222222222222222222222222222222222", "symbol": "USDC", "decimals": 6},
		{"chainId": 1, "address": "0x3333333333333333333333333333333333333333", "symbol": "WETH", "decimals": 18}
	]`), 0o600))

	p := NewTokenProvider(path, 50312, logger.NewNopLogger())
	tokens, err := p.GetTrackedTokens()
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDC", tokens[0].Symbol)

	require.NoError(t, os.Remove(path))
	again, err := p.GetTrackedTokens()
	require.NoError(t, err)
	assert.Equal(t, tokens, again)
}

func TestTokenProvider_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, err := NewTokenProvider(path, 50312, logger.NewNopLogger()).GetTrackedTokens()
	assert.Error(t, err)
}

func TestWalletProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")
	require.NoError(t, os.WriteFile(path, []byte("0x1111111111111111111111111111111111111111\nnope\n"), 0o600))

	wallets, err := NewWalletProvider(path, logger.NewNopLogger()).GetWallets()
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1111111111111111111111111111111111111111"}, wallets)

	none, err := NewWalletProvider("", logger.NewNopLogger()).GetWallets()
	require.NoError(t, err)
	assert.Empty(t, none)
}
