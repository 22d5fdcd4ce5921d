package port

import (
	"context"

	"stream_insight/internal/domain/entity"
)

// PortfolioService is the consumer-facing surface over wallet sessions.
type PortfolioService interface {
	// StartSession opens (or reuses) the live session of a wallet.
	StartSession(ctx context.Context, walletAddress string) error
	// StopSession tears the session down; stopping an unknown wallet is not an error.
	StopSession(walletAddress string)
	// Portfolio returns the reconciled view of a wallet.
	Portfolio(ctx context.Context, walletAddress string) (entity.WalletPortfolio, error)
	// Transactions returns up to limit transactions, most recent first.
	Transactions(walletAddress string, limit int) ([]entity.Transaction, error)
	// FetchSeed performs a one-shot RPC balance read without touching session state.
	FetchSeed(ctx context.Context, walletAddress string) []entity.TokenBalance
	// Prices returns the latest known prices for the given tokens.
	Prices(tokenAddresses []string) []entity.PriceUpdate
	// Events streams state changes of a live session until cancel is called.
	Events(walletAddress string) (<-chan entity.StateEvent, func(), error)
	// Connections reports the stream connection state per live session.
	Connections() map[string]entity.ConnectionState
}

// StakingScanner probes contracts for staking functionality.
type StakingScanner interface {
	Scan(ctx context.Context, addresses []string) []entity.StakingContractReport
}

// EventPublisher forwards state events to an external broker.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// SnapshotStore persists the latest reconciled view per wallet.
type SnapshotStore interface {
	Save(ctx context.Context, portfolio entity.WalletPortfolio) error
	Load(ctx context.Context, walletAddress string) (*entity.WalletPortfolio, error)
}
