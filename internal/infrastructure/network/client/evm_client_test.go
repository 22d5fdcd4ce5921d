package client

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/domain/entity"
)

const (
	testWallet = "0x1111111111111111111111111111111111111111"
	testToken  = "0x2222222222222222222222222222222222222222"
	badToken   = "0x3333333333333333333333333333333333333333"
	testPool   = "0x4444444444444444444444444444444444444444"
)

type callArgs struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// fakeEth serves the eth_ namespace methods the client uses.
type fakeEth struct {
	native *big.Int
	tokens map[common.Address]*big.Int
	code   map[common.Address][]byte
}

func (f *fakeEth) GetBalance(_ common.Address, _ string) (*hexutil.Big, error) {
	return (*hexutil.Big)(f.native), nil
}

func (f *fakeEth) Call(args callArgs, _ string) (hexutil.Bytes, error) {
	balance, ok := f.tokens[args.To]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	if len(args.Data) != 36 {
		return nil, errors.New("bad calldata")
	}
	return common.LeftPadBytes(balance.Bytes(), 32), nil
}

func (f *fakeEth) GetCode(addr common.Address, _ string) (hexutil.Bytes, error) {
	return f.code[addr], nil
}

func newTestClient(t *testing.T) *EVMClient {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &fakeEth{
		native: big.NewInt(2_000_000_000_000_000_000),
		tokens: map[common.Address]*big.Int{common.HexToAddress(testToken): big.NewInt(5_250_000)},
		code:   map[common.Address][]byte{common.HexToAddress(testPool): {0x60, 0x80}},
	}))
	t.Cleanup(server.Stop)

	c := NewEVMClientFromRPC(rpc.DialInProc(server), entity.NetworkDefinition{Name: "Somnia Testnet", ChainID: 50312}, time.Second)
	t.Cleanup(c.Close)
	return c
}

func TestEVMClient_GetNativeBalance(t *testing.T) {
	c := newTestClient(t)

	balance, err := c.GetNativeBalance(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000", balance.String())
	assert.Equal(t, uint64(50312), c.Definition().ChainID)
}

func TestEVMClient_GetCode(t *testing.T) {
	c := newTestClient(t)

	code, err := c.GetCode(context.Background(), testPool)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, code)

	code, err = c.GetCode(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestEVMClient_GetBalances(t *testing.T) {
	c := newTestClient(t)

	results, err := c.GetBalances(context.Background(), []entity.BalanceRequestItem{
		{ID: "native", Type: entity.NativeBalanceRequest, WalletAddress: testWallet, TokenSymbol: "STT", TokenDecimals: 18},
		{ID: "usdc", Type: entity.TokenBalanceRequest, WalletAddress: testWallet, TokenAddress: testToken, TokenSymbol: "USDC", TokenDecimals: 6},
		{ID: "bad", Type: entity.TokenBalanceRequest, WalletAddress: testWallet, TokenAddress: badToken, TokenSymbol: "BAD", TokenDecimals: 18},
		{ID: "unknown", Type: entity.BalanceRequestType(9), WalletAddress: testWallet},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].IsNative)
	assert.Equal(t, "2", results[0].FormattedBalance)

	require.NoError(t, results[1].Error)
	assert.Equal(t, "5.25", results[1].FormattedBalance)
	assert.Equal(t, "usdc", results[1].RequestID)

	assert.Error(t, results[2].Error)
	assert.Nil(t, results[2].Balance)
	assert.Error(t, results[3].Error)
}

func TestEVMClient_GetBalancesEmpty(t *testing.T) {
	c := newTestClient(t)

	results, err := c.GetBalances(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestNewEVMClient_NoURLs(t *testing.T) {
	_, err := NewEVMClient(entity.NetworkDefinition{Name: "empty"}, time.Second, time.Second)
	assert.ErrorContains(t, err, "no RPC URL configured")
}
