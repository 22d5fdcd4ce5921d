package entity

// NetworkDefinition holds the configuration for the chain the service tracks.
type NetworkDefinition struct {
	ChainID            uint64   `json:"chainId" yaml:"chainId"`
	Name               string   `json:"name" yaml:"name"`
	Identifier         string   `json:"identifier" yaml:"identifier"`
	NativeSymbol       string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeName         string   `json:"nativeName" yaml:"nativeName"`
	Decimals           int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL      string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs    []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	WebSocketURL       string   `json:"webSocketUrl,omitempty" yaml:"webSocketUrl,omitempty"`
	BlockExplorerURL   string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerChainID string   `json:"dexScreenerChainId,omitempty" yaml:"dexScreenerChainId,omitempty"`
	Testnet            bool     `json:"testnet" yaml:"testnet"`
}

// RPCURLs returns the primary RPC URL followed by the fallbacks.
func (n NetworkDefinition) RPCURLs() []string {
	urls := make([]string, 0, 1+len(n.FallbackRPCURLs))
	if n.PrimaryRPCURL != "" {
		urls = append(urls, n.PrimaryRPCURL)
	}
	return append(urls, n.FallbackRPCURLs...)
}
