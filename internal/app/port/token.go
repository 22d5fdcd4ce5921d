package port

import (
	"context"

	"stream_insight/internal/domain/entity"
)

// TokenProvider provides the catalog of tracked ERC-20 tokens.
type TokenProvider interface {
	GetTrackedTokens() ([]entity.TokenInfo, error)
}

// DEXScreenerClient fetches trading pairs for token addresses.
type DEXScreenerClient interface {
	GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]entity.PairData, error)
}

// TokenPriceService serves cached USD prices for tracked tokens.
type TokenPriceService interface {
	LoadAndCacheTokenPrices(ctx context.Context) error
	GetPrice(tokenAddress string) (entity.PriceUpdate, bool)
	GetPrices(tokenAddresses []string) []entity.PriceUpdate
}
