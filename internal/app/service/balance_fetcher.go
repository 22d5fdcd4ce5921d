package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/utils"
)

const (
	nativeTokenName    = "Somnia Test Token"
	nativePrice        = "$1.00"
	nativeDecimals     = 18
	seedDisplayDecimal = 6
)

// BalanceFetcher reads balances straight from the chain over JSON-RPC.
type BalanceFetcher struct {
	client      port.BlockchainClient
	prices      port.TokenPriceService
	limiter     *rate.Limiter
	callTimeout time.Duration
	batchSize   int
	logger      port.Logger
}

// NewBalanceFetcher creates a fetcher. prices may be nil, in which case token balances are unpriced.
// A nil limiter means no throttling.
func NewBalanceFetcher(
	client port.BlockchainClient,
	prices port.TokenPriceService,
	limiter *rate.Limiter,
	callTimeout time.Duration,
	batchSize int,
	logger port.Logger,
) *BalanceFetcher {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BalanceFetcher{
		client:      client,
		prices:      prices,
		limiter:     limiter,
		callTimeout: callTimeout,
		batchSize:   batchSize,
		logger:      logger,
	}
}

func (f *BalanceFetcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.callTimeout)
}

// FetchSeedBalance returns the native balance of a wallet as a one-element list.
// A zero balance or any RPC failure yields an empty list; failures are logged, never returned.
func (f *BalanceFetcher) FetchSeedBalance(ctx context.Context, walletAddress string) []entity.TokenBalance {
	if err := f.limiter.Wait(ctx); err != nil {
		f.logger.Warn("Seed balance fetch throttled out", "wallet", walletAddress, "error", err)
		return []entity.TokenBalance{}
	}

	callCtx, cancel := f.callContext(ctx)
	defer cancel()

	wei, err := f.client.GetNativeBalance(callCtx, walletAddress)
	if err != nil {
		f.logger.Warn("Failed to fetch native balance", "wallet", walletAddress, "error", err)
		return []entity.TokenBalance{}
	}
	if wei == nil || wei.Sign() <= 0 {
		f.logger.Debug("Native balance is zero", "wallet", walletAddress)
		return []entity.TokenBalance{}
	}

	amount := utils.ScaleBaseUnits(wei, nativeDecimals)
	symbol := f.client.Definition().NativeSymbol
	if symbol == "" {
		symbol = "STT"
	}
	return []entity.TokenBalance{{
		OwnerAddress:    walletAddress,
		ContractAddress: entity.ZeroAddress,
		Symbol:          symbol,
		Name:            nativeTokenName,
		Balance:         amount.Round(seedDisplayDecimal).String(),
		Value:           utils.FormatUSDCents(amount),
		Price:           nativePrice,
		Decimals:        nativeDecimals,
	}}
}

// FetchTrackedTokenBalances batches balanceOf calls for the token catalog and returns the
// non-zero balances, priced from the price cache when available.
func (f *BalanceFetcher) FetchTrackedTokenBalances(ctx context.Context, walletAddress string, tokens []entity.TokenInfo) []entity.TokenBalance {
	if len(tokens) == 0 {
		return []entity.TokenBalance{}
	}

	requests := make([]entity.BalanceRequestItem, 0, len(tokens))
	for _, token := range tokens {
		requests = append(requests, entity.BalanceRequestItem{
			ID:            fmt.Sprintf("%s:%s", strings.ToLower(walletAddress), strings.ToLower(token.Address)),
			Type:          entity.TokenBalanceRequest,
			WalletAddress: walletAddress,
			TokenAddress:  token.Address,
			TokenSymbol:   token.Symbol,
			TokenName:     token.Name,
			TokenDecimals: token.Decimals,
		})
	}

	out := make([]entity.TokenBalance, 0)
	for _, batch := range utils.Batch(requests, f.batchSize) {
		if err := f.limiter.Wait(ctx); err != nil {
			f.logger.Warn("Token balance fetch throttled out", "wallet", walletAddress, "error", err)
			break
		}
		callCtx, cancel := f.callContext(ctx)
		results, err := f.client.GetBalances(callCtx, batch)
		cancel()
		if err != nil {
			f.logger.Warn("Token balance batch failed", "wallet", walletAddress, "batchSize", len(batch), "error", err)
			continue
		}

		for _, res := range results {
			if res.Error != nil {
				f.logger.Debug("Token balance unavailable", "wallet", walletAddress, "token", res.TokenSymbol, "error", res.Error)
				continue
			}
			if res.Balance == nil || res.Balance.Sign() <= 0 {
				continue
			}
			out = append(out, f.tokenBalance(walletAddress, res))
		}
	}
	return out
}

func (f *BalanceFetcher) tokenBalance(walletAddress string, res entity.BalanceResultItem) entity.TokenBalance {
	amount := utils.ScaleBaseUnits(res.Balance, res.Decimals)
	b := entity.TokenBalance{
		OwnerAddress:    walletAddress,
		ContractAddress: res.TokenAddress,
		Symbol:          res.TokenSymbol,
		Name:            res.TokenName,
		Balance:         amount.Round(seedDisplayDecimal).String(),
		Value:           "$0.00",
		Price:           "$0.00",
		Decimals:        int(res.Decimals),
	}
	if f.prices == nil {
		return b
	}
	if p, ok := f.prices.GetPrice(res.TokenAddress); ok {
		price := utils.ParseMoney(p.Price)
		b.Price = p.Price
		b.Change24h = p.Change24h
		b.Value = utils.FormatUSDCents(price.Mul(amount))
	}
	return b
}

// FetchAll returns the native seed balance followed by the tracked token balances.
func (f *BalanceFetcher) FetchAll(ctx context.Context, walletAddress string, tokens []entity.TokenInfo) []entity.TokenBalance {
	balances := f.FetchSeedBalance(ctx, walletAddress)
	return append(balances, f.FetchTrackedTokenBalances(ctx, walletAddress, tokens)...)
}
