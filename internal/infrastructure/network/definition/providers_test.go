package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/infrastructure/configloader"
	"stream_insight/internal/pkg/logger"
)

func TestNewNetworkDefinitionProvider_OverlaysConfig(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNopLogger(), configloader.NetworkConfig{
		Identifier:      "Somnia-Testnet",
		RPCURL:          "https://rpc.example.test",
		FallbackRPCURLs: []string{"https://fallback.example.test"},
	})

	def := p.Active()
	assert.Equal(t, "somnia-testnet", def.Identifier)
	assert.Equal(t, uint64(50312), def.ChainID)
	assert.Equal(t, "https://rpc.example.test", def.PrimaryRPCURL)
	assert.Equal(t, []string{"https://rpc.example.test", "https://fallback.example.test"}, def.RPCURLs())
	assert.Equal(t, "STT", def.NativeSymbol)
	assert.Equal(t, SomniaTestnet.WebSocketURL, def.WebSocketURL)

	byName, ok := p.GetNetworkDefinitionByName("somnia-testnet")
	require.True(t, ok)
	assert.Equal(t, def.PrimaryRPCURL, byName.PrimaryRPCURL)

	byChain, ok := p.GetNetworkDefinitionByChainID(50312)
	require.True(t, ok)
	assert.Equal(t, def.Name, byChain.Name)

	_, ok = p.GetNetworkDefinitionByChainID(1)
	assert.False(t, ok)
}

func TestNewNetworkDefinitionProvider_UnknownIdentifier(t *testing.T) {
	p := NewNetworkDefinitionProvider(logger.NewNopLogger(), configloader.NetworkConfig{
		Identifier: "devnet",
		Name:       "Local Devnet",
		ChainID:    31337,
		RPCURL:     "http://127.0.0.1:8545",
	})

	def := p.Active()
	assert.Equal(t, "devnet", def.Identifier)
	assert.Equal(t, uint64(31337), def.ChainID)
	assert.Equal(t, int32(18), def.Decimals)

	_, ok := p.GetNetworkDefinitionByName("somnia-testnet")
	assert.True(t, ok)
	_, ok = p.GetNetworkDefinitionByName("mainnet")
	assert.False(t, ok)
}
