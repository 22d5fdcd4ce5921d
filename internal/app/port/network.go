package port

import (
	"context"
	"math/big"

	"stream_insight/internal/domain/entity"
)

// BlockchainClient is the read-only JSON-RPC surface the service needs from the chain.
type BlockchainClient interface {
	// GetNativeBalance returns the native (STT) balance of a wallet in base units.
	GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// GetBalances resolves several balances in one JSON-RPC batch. Per-item failures are
	// reported on the result items; the error is set only when the batch itself failed.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// GetCode returns the deployed bytecode at address, empty for EOAs.
	GetCode(ctx context.Context, address string) ([]byte, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// NetworkDefinitionProvider provides the chain definitions known to the service.
type NetworkDefinitionProvider interface {
	// Active returns the definition of the network the service tracks.
	Active() entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a known definition by identifier.
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)
}
