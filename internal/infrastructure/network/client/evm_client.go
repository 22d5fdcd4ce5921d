package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/metrics"
	"stream_insight/internal/pkg/utils"
)

// EVMClient implements port.BlockchainClient over JSON-RPC.
type EVMClient struct {
	rpcClient      *rpc.Client
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	rpcCallTimeout time.Duration
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOf, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOf.ID
	})
}

// NewEVMClient dials the primary RPC URL of netDef and then each fallback in order.
func NewEVMClient(netDef entity.NetworkDefinition, connectionTimeout, rpcCallTimeout time.Duration) (*EVMClient, error) {
	var lastErr error
	for _, rpcURL := range netDef.RPCURLs() {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		rpcClient, err := rpc.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			return NewEVMClientFromRPC(rpcClient, netDef, rpcCallTimeout), nil
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	if lastErr == nil {
		lastErr = errors.New("no RPC URL configured")
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", netDef.Name, lastErr)
}

// NewEVMClientFromRPC wraps an already connected RPC client.
func NewEVMClientFromRPC(rpcClient *rpc.Client, netDef entity.NetworkDefinition, rpcCallTimeout time.Duration) *EVMClient {
	initParsedERC20ABI()
	if rpcCallTimeout <= 0 {
		rpcCallTimeout = 10 * time.Second
	}
	return &EVMClient{
		rpcClient:      rpcClient,
		ethClient:      ethclient.NewClient(rpcClient),
		netDef:         netDef,
		rpcCallTimeout: rpcCallTimeout,
	}
}

var _ port.BlockchainClient = (*EVMClient)(nil)

// GetNativeBalance returns the STT balance of walletAddress in wei.
func (c *EVMClient) GetNativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(ctx, common.HexToAddress(walletAddress), nil)
	metrics.ObserveRPC("eth_getBalance", err)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance %s: %w", walletAddress, err)
	}
	return balance, nil
}

// GetCode returns the deployed bytecode at address; empty for externally owned accounts.
func (c *EVMClient) GetCode(ctx context.Context, address string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	code, err := c.ethClient.CodeAt(ctx, common.HexToAddress(address), nil)
	metrics.ObserveRPC("eth_getCode", err)
	if err != nil {
		return nil, fmt.Errorf("eth_getCode %s: %w", address, err)
	}
	return code, nil
}

// GetBalances fetches multiple balances using JSON-RPC batch requests.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, 0, len(requests))
	elemIndex := make([]int, 0, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, req := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:     req.ID,
			WalletAddress: req.WalletAddress,
			TokenAddress:  req.TokenAddress,
			TokenSymbol:   req.TokenSymbol,
			TokenName:     req.TokenName,
			Decimals:      req.TokenDecimals,
			IsNative:      req.Type == entity.NativeBalanceRequest,
		}

		switch req.Type {
		case entity.NativeBalanceRequest:
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []any{common.HexToAddress(req.WalletAddress), "latest"},
				Result: new(*hexutil.Big),
			})
			elemIndex = append(elemIndex, i)
		case entity.TokenBalanceRequest:
			padded := common.LeftPadBytes(common.HexToAddress(req.WalletAddress).Bytes(), 32)
			callData := append(append([]byte{}, erc20MethodID...), padded...)
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args: []any{map[string]any{
					"to":   common.HexToAddress(req.TokenAddress),
					"data": hexutil.Bytes(callData),
				}, "latest"},
				Result: new(hexutil.Bytes),
			})
			elemIndex = append(elemIndex, i)
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", req.Type, req.TokenSymbol)
		}
	}
	if len(batchElems) == 0 {
		return results, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	err := c.rpcClient.BatchCallContext(callCtx, batchElems)
	metrics.ObserveRPC("batch", err)
	if err != nil {
		return results, fmt.Errorf("RPC batch call failed: %w", err)
	}

	for n, elem := range batchElems {
		i := elemIndex[n]
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s for %s (wallet %s): %w",
				requests[i].TokenSymbol, requests[i].TokenAddress, requests[i].WalletAddress, elem.Error)
			continue
		}

		switch requests[i].Type {
		case entity.NativeBalanceRequest:
			if result, ok := elem.Result.(**hexutil.Big); ok && result != nil && *result != nil {
				results[i].Balance = (*big.Int)(*result)
			} else {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s: unexpected type or nil result", requests[i].TokenSymbol)
			}
		case entity.TokenBalanceRequest:
			results[i].Balance, results[i].Error = decodeBalanceOf(elem.Result, requests[i].TokenSymbol)
		}

		if results[i].Error != nil {
			continue
		}
		if results[i].Balance == nil {
			results[i].Balance = big.NewInt(0)
		}
		results[i].FormattedBalance = utils.FormatBigInt(results[i].Balance, results[i].Decimals)
	}
	return results, nil
}

func decodeBalanceOf(result any, symbol string) (*big.Int, error) {
	raw, ok := result.(*hexutil.Bytes)
	if !ok || raw == nil {
		return nil, fmt.Errorf("failed to decode token balance for %s: unexpected type or nil result", symbol)
	}
	if len(*raw) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result for %s: %w. Raw: %s", symbol, err, hexutil.Encode(*raw))
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf unpack returned no data for %s", symbol)
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("failed to assert unpacked balanceOf result to *big.Int for %s. Got: %T", symbol, unpacked[0])
	}
	return balance, nil
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.rpcClient.Close()
}
