package networkdefinition

import (
	"fmt"
	"strings"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
)

// NetworkDefinitionProvider resolves the chain the service tracks.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	allNetworkDefs map[string]entity.NetworkDefinition
	active         entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	SomniaTestnet = entity.NetworkDefinition{
		ChainID:            50312,
		Name:               "Somnia Testnet",
		Identifier:         "somnia-testnet",
		NativeSymbol:       "STT",
		NativeName:         "Somnia Test Token",
		Decimals:           18,
		PrimaryRPCURL:      "https://dream-rpc.somnia.network",
		WebSocketURL:       "wss://dream-rpc.somnia.network/ws",
		BlockExplorerURL:   "https://shannon-explorer.somnia.network",
		DEXScreenerChainID: "somnia",
		Testnet:            true,
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{
	SomniaTestnet.Identifier: SomniaTestnet,
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)

// NewNetworkDefinitionProvider builds the active definition from cfg. Fields left empty in
// cfg are taken from the predefined definition with the same identifier, when there is one.
func NewNetworkDefinitionProvider(log port.Logger, cfg configloader.NetworkConfig) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:         log,
		allNetworkDefs: allKnownDefinitions,
	}

	identifier := strings.ToLower(strings.TrimSpace(cfg.Identifier))
	def, known := p.allNetworkDefs[identifier]
	if !known {
		p.logger.Warn(fmt.Sprintf("No predefined network definition for '%s', using configuration only.", identifier))
		def = entity.NetworkDefinition{Identifier: identifier, Decimals: 18}
	}

	overlay(&def.Name, cfg.Name)
	overlay(&def.PrimaryRPCURL, cfg.RPCURL)
	overlay(&def.WebSocketURL, cfg.WSURL)
	overlay(&def.BlockExplorerURL, cfg.ExplorerURL)
	overlay(&def.DEXScreenerChainID, cfg.DEXScreenerChainID)
	overlay(&def.NativeSymbol, cfg.NativeSymbol)
	overlay(&def.NativeName, cfg.NativeName)
	if cfg.ChainID != 0 {
		def.ChainID = cfg.ChainID
	}
	if len(cfg.FallbackRPCURLs) > 0 {
		def.FallbackRPCURLs = append([]string(nil), cfg.FallbackRPCURLs...)
	}

	p.active = def
	p.logger.Debug(fmt.Sprintf("Active network: %s (ID: %s, ChainID: %d, DEXScreenerID: %s)", def.Name, def.Identifier, def.ChainID, def.DEXScreenerChainID))
	return p
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// Active returns the tracked network.
func (p *NetworkDefinitionProvider) Active() entity.NetworkDefinition {
	if p == nil {
		return entity.NetworkDefinition{}
	}
	def := p.active
	def.FallbackRPCURLs = append([]string(nil), p.active.FallbackRPCURLs...)
	return def
}

// GetNetworkDefinitionByName returns the active definition when identifier matches it,
// otherwise a predefined one.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	identifier = strings.ToLower(identifier)
	if identifier == p.active.Identifier {
		return p.Active(), true
	}
	def, ok := p.allNetworkDefs[identifier]
	return def, ok
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	if p.active.ChainID == chainID {
		return p.Active(), true
	}
	for _, knownDef := range p.allNetworkDefs {
		if knownDef.ChainID == chainID {
			p.logger.Warn(fmt.Sprintf("Network with ChainID %d is known but not the active network.", chainID))
			return knownDef, true
		}
	}
	return entity.NetworkDefinition{}, false
}
