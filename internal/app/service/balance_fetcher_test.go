package service

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/logger"
)

const fetchWallet = "0x2222222222222222222222222222222222222222"

func wei(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}

func TestFetchSeedBalance(t *testing.T) {
	client := new(mockBlockchainClient)
	client.On("GetNativeBalance", mock.Anything, fetchWallet).Return(wei("2500000000000000000"), nil)
	client.On("Definition").Return(somniaTestnet)

	f := NewBalanceFetcher(client, nil, nil, time.Second, 0, logger.NewNopLogger())
	got := f.FetchSeedBalance(context.Background(), fetchWallet)

	require.Len(t, got, 1)
	assert.Equal(t, entity.TokenBalance{
		OwnerAddress:    fetchWallet,
		ContractAddress: entity.ZeroAddress,
		Symbol:          "STT",
		Name:            "Somnia Test Token",
		Balance:         "2.5",
		Value:           "$2.50",
		Price:           "$1.00",
		Decimals:        18,
	}, got[0])
	client.AssertExpectations(t)
}

func TestFetchSeedBalance_ZeroAndErrors(t *testing.T) {
	tests := []struct {
		name    string
		balance *big.Int
		err     error
	}{
		{name: "zero balance", balance: big.NewInt(0)},
		{name: "nil balance", balance: nil},
		{name: "rpc failure", err: errors.New("503 service unavailable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockBlockchainClient)
			client.On("GetNativeBalance", mock.Anything, fetchWallet).Return(tt.balance, tt.err)

			f := NewBalanceFetcher(client, nil, nil, time.Second, 0, logger.NewNopLogger())
			got := f.FetchSeedBalance(context.Background(), fetchWallet)

			assert.NotNil(t, got)
			assert.Empty(t, got)
			client.AssertNotCalled(t, "Definition")
		})
	}
}

func TestFetchTrackedTokenBalances(t *testing.T) {
	usdc := entity.TokenInfo{Address: "0xUSDC", Symbol: "USDC", Name: "USD Coin", Decimals: 6}
	weth := entity.TokenInfo{Address: "0xWETH", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18}
	dead := entity.TokenInfo{Address: "0xDEAD", Symbol: "DEAD", Name: "Dead Token", Decimals: 18}

	client := new(mockBlockchainClient)
	client.On("GetBalances", mock.Anything, mock.MatchedBy(func(reqs []entity.BalanceRequestItem) bool {
		return len(reqs) == 3 && reqs[0].Type == entity.TokenBalanceRequest && reqs[0].WalletAddress == fetchWallet
	})).Return([]entity.BalanceResultItem{
		{TokenAddress: usdc.Address, TokenSymbol: "USDC", TokenName: usdc.Name, Decimals: 6, Balance: big.NewInt(12_500_000)},
		{TokenAddress: weth.Address, TokenSymbol: "WETH", TokenName: weth.Name, Decimals: 18, Balance: big.NewInt(0)},
		{TokenAddress: dead.Address, TokenSymbol: "DEAD", Error: errors.New("execution reverted")},
	}, nil)

	prices := new(mockPriceService)
	prices.On("GetPrice", usdc.Address).Return(entity.PriceUpdate{TokenAddress: usdc.Address, Price: "$1.00", Change24h: 0.1}, true)

	f := NewBalanceFetcher(client, prices, nil, time.Second, 10, logger.NewNopLogger())
	got := f.FetchTrackedTokenBalances(context.Background(), fetchWallet, []entity.TokenInfo{usdc, weth, dead})

	require.Len(t, got, 1)
	assert.Equal(t, "USDC", got[0].Symbol)
	assert.Equal(t, "12.5", got[0].Balance)
	assert.Equal(t, "$12.50", got[0].Value)
	assert.Equal(t, 0.1, got[0].Change24h)
	assert.Equal(t, 6, got[0].Decimals)
	client.AssertExpectations(t)
	prices.AssertExpectations(t)
}

func TestFetchTrackedTokenBalances_BatchFailure(t *testing.T) {
	client := new(mockBlockchainClient)
	client.On("GetBalances", mock.Anything, mock.Anything).Return(nil, errors.New("batch too large"))

	f := NewBalanceFetcher(client, nil, nil, time.Second, 1, logger.NewNopLogger())
	got := f.FetchTrackedTokenBalances(context.Background(), fetchWallet, []entity.TokenInfo{
		{Address: "0xA", Symbol: "A", Decimals: 18},
		{Address: "0xB", Symbol: "B", Decimals: 18},
	})

	assert.Empty(t, got)
	client.AssertNumberOfCalls(t, "GetBalances", 2)
}
