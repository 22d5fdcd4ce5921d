package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
	"stream_insight/internal/pkg/logger"
)

func priceConfig(batch int) *configloader.Config {
	cfg := &configloader.Config{}
	cfg.TokenPriceSvc.MaxTokensPerBatchRequest = batch
	cfg.TokenPriceSvc.CacheTTLMinutes = 60
	cfg.Performance.MaxConcurrentRoutines = 2
	return cfg
}

func TestTokenPriceService_PrefersStablecoinPair(t *testing.T) {
	token := entity.TokenInfo{Address: "0xAbC", Symbol: "ABC", Decimals: 18}

	tokens := new(mockTokenProvider)
	tokens.On("GetTrackedTokens").Return([]entity.TokenInfo{token}, nil)

	dsc := new(mockDEXScreenerClient)
	dsc.On("GetTokenPairsByAddresses", mock.Anything, "somnia", []string{"0xAbC"}).Return([]entity.PairData{
		{
			PairAddress: "0xpair1",
			BaseToken:   entity.DEXToken{Address: "0xabc"},
			QuoteToken:  entity.DEXToken{Symbol: "WSTT"},
			PriceUsd:    "2.10",
			Liquidity:   &entity.DEXLiquidity{Usd: 1_000_000},
		},
		{
			PairAddress: "0xpair2",
			BaseToken:   entity.DEXToken{Address: "0xABC"},
			QuoteToken:  entity.DEXToken{Symbol: "usdc"},
			PriceUsd:    "2.05",
			PriceChange: entity.PairPriceChange{H24: -1.5},
			Liquidity:   &entity.DEXLiquidity{Usd: 5_000},
		},
		{
			PairAddress: "0xother",
			BaseToken:   entity.DEXToken{Address: "0xdef"},
			QuoteToken:  entity.DEXToken{Symbol: "USDC"},
			PriceUsd:    "9",
		},
	}, nil)

	svc := NewTokenPriceService(tokens, somniaTestnet, dsc, logger.NewNopLogger(), priceConfig(30))
	require.NoError(t, svc.LoadAndCacheTokenPrices(context.Background()))

	p, ok := svc.GetPrice("0xabc")
	require.True(t, ok)
	assert.Equal(t, "$2.05", p.Price)
	assert.Equal(t, "ABC", p.Symbol)
	assert.Equal(t, -1.5, p.Change24h)

	_, ok = svc.GetPrice("0xdef")
	assert.False(t, ok)
	assert.Len(t, svc.GetPrices([]string{"0xABC", "0xdef"}), 1)
}

func TestTokenPriceService_BatchesAndSurvivesFailures(t *testing.T) {
	tokens := new(mockTokenProvider)
	tokens.On("GetTrackedTokens").Return([]entity.TokenInfo{
		{Address: "0x1", Symbol: "ONE"},
		{Address: "0x2", Symbol: "TWO"},
		{Address: "0x3", Symbol: "THREE"},
	}, nil)

	dsc := new(mockDEXScreenerClient)
	dsc.On("GetTokenPairsByAddresses", mock.Anything, "somnia", []string{"0x1", "0x2"}).Return(nil, errors.New("429 too many requests"))
	dsc.On("GetTokenPairsByAddresses", mock.Anything, "somnia", []string{"0x3"}).Return([]entity.PairData{
		{BaseToken: entity.DEXToken{Address: "0x3"}, PriceUsd: "0.5"},
	}, nil)

	svc := NewTokenPriceService(tokens, somniaTestnet, dsc, logger.NewNopLogger(), priceConfig(2))
	require.NoError(t, svc.LoadAndCacheTokenPrices(context.Background()))

	p, ok := svc.GetPrice("0x3")
	require.True(t, ok)
	assert.Equal(t, "$0.50", p.Price)
	dsc.AssertNumberOfCalls(t, "GetTokenPairsByAddresses", 2)
}

func TestTokenPriceService_TokenProviderError(t *testing.T) {
	tokens := new(mockTokenProvider)
	tokens.On("GetTrackedTokens").Return(nil, errors.New("file missing"))

	svc := NewTokenPriceService(tokens, somniaTestnet, new(mockDEXScreenerClient), logger.NewNopLogger(), priceConfig(30))
	assert.Error(t, svc.LoadAndCacheTokenPrices(context.Background()))
}

func TestTokenPriceService_NoDEXScreenerChain(t *testing.T) {
	network := somniaTestnet
	network.DEXScreenerChainID = ""
	tokens := new(mockTokenProvider)

	svc := NewTokenPriceService(tokens, network, new(mockDEXScreenerClient), logger.NewNopLogger(), priceConfig(30))
	assert.NoError(t, svc.LoadAndCacheTokenPrices(context.Background()))
	tokens.AssertNotCalled(t, "GetTrackedTokens")
}
