package service

import (
	"context"
	"errors"
	"math/big"

	"github.com/stretchr/testify/mock"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
)

type mockBlockchainClient struct {
	mock.Mock
}

func (m *mockBlockchainClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	args := m.Called(ctx, walletAddress)
	var balance *big.Int
	if v := args.Get(0); v != nil {
		balance = v.(*big.Int)
	}
	return balance, args.Error(1)
}

func (m *mockBlockchainClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	args := m.Called(ctx, requests)
	var results []entity.BalanceResultItem
	if v := args.Get(0); v != nil {
		results = v.([]entity.BalanceResultItem)
	}
	return results, args.Error(1)
}

func (m *mockBlockchainClient) GetCode(ctx context.Context, address string) ([]byte, error) {
	args := m.Called(ctx, address)
	var code []byte
	if v := args.Get(0); v != nil {
		code = v.([]byte)
	}
	return code, args.Error(1)
}

func (m *mockBlockchainClient) Definition() entity.NetworkDefinition {
	args := m.Called()
	return args.Get(0).(entity.NetworkDefinition)
}

type mockTokenProvider struct {
	mock.Mock
}

func (m *mockTokenProvider) GetTrackedTokens() ([]entity.TokenInfo, error) {
	args := m.Called()
	var tokens []entity.TokenInfo
	if v := args.Get(0); v != nil {
		tokens = v.([]entity.TokenInfo)
	}
	return tokens, args.Error(1)
}

type mockDEXScreenerClient struct {
	mock.Mock
}

func (m *mockDEXScreenerClient) GetTokenPairsByAddresses(ctx context.Context, chainID string, tokenAddresses []string) ([]entity.PairData, error) {
	args := m.Called(ctx, chainID, tokenAddresses)
	var pairs []entity.PairData
	if v := args.Get(0); v != nil {
		pairs = v.([]entity.PairData)
	}
	return pairs, args.Error(1)
}

type mockPriceService struct {
	mock.Mock
}

func (m *mockPriceService) LoadAndCacheTokenPrices(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockPriceService) GetPrice(tokenAddress string) (entity.PriceUpdate, bool) {
	args := m.Called(tokenAddress)
	return args.Get(0).(entity.PriceUpdate), args.Bool(1)
}

func (m *mockPriceService) GetPrices(tokenAddresses []string) []entity.PriceUpdate {
	args := m.Called(tokenAddresses)
	return args.Get(0).([]entity.PriceUpdate)
}

// unreachableDialer simulates a stream endpoint that refuses connections.
type unreachableDialer struct{}

func (unreachableDialer) Dial(context.Context) (port.StreamClient, error) {
	return nil, errors.New("dial tcp: connection refused")
}

var somniaTestnet = entity.NetworkDefinition{
	ChainID:            50312,
	Name:               "Somnia Testnet",
	NativeSymbol:       "STT",
	DEXScreenerChainID: "somnia",
}
