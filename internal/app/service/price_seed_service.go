package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
	"stream_insight/internal/pkg/utils"
)

const (
	stablecoinUSDCSymbol = "USDC"
	stablecoinUSDTSymbol = "USDT"
	stablecoinDAISymbol  = "DAI"
)

var stablecoinSymbols = map[string]struct{}{
	stablecoinUSDCSymbol: {},
	stablecoinUSDTSymbol: {},
	stablecoinDAISymbol:  {},
}

// tokenPriceServiceImpl implements port.TokenPriceService on top of DEXScreener.
type tokenPriceServiceImpl struct {
	tokenProvider     port.TokenProvider
	network           entity.NetworkDefinition
	dexscreenerClient port.DEXScreenerClient
	logger            port.Logger
	cache             *gocache.Cache

	batchSize      int
	concurrency    int
	requestTimeout time.Duration
}

// NewTokenPriceService creates a new price service. Prices expire after tokenPriceService.cacheTTLMinutes.
func NewTokenPriceService(
	tp port.TokenProvider,
	network entity.NetworkDefinition,
	dsc port.DEXScreenerClient,
	l port.Logger,
	cfg *configloader.Config,
) port.TokenPriceService {
	ttl := time.Duration(cfg.TokenPriceSvc.CacheTTLMinutes) * time.Minute
	s := &tokenPriceServiceImpl{
		tokenProvider:     tp,
		network:           network,
		dexscreenerClient: dsc,
		logger:            l,
		cache:             gocache.New(ttl, 2*ttl),
		batchSize:         cfg.TokenPriceSvc.MaxTokensPerBatchRequest,
		concurrency:       cfg.Performance.MaxConcurrentRoutines,
		requestTimeout:    time.Duration(cfg.TokenPriceSvc.RequestTimeoutMillis) * time.Millisecond,
	}
	l.Info("TokenPriceService initialized", "cacheTTL", ttl.String())
	return s
}

// LoadAndCacheTokenPrices implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) LoadAndCacheTokenPrices(ctx context.Context) error {
	dexID := s.network.DEXScreenerChainID
	if dexID == "" {
		s.logger.Warn("DEXScreenerChainID not defined for network, skipping price fetch", "network", s.network.Name)
		return nil
	}

	tokens, err := s.tokenProvider.GetTrackedTokens()
	if err != nil {
		s.logger.Error("Failed to get tracked tokens from tokenProvider", "error", err)
		return fmt.Errorf("failed to get tokens for price fetching: %w", err)
	}
	if len(tokens) == 0 {
		s.logger.Debug("No tracked tokens, nothing to price", "network", s.network.Name)
		return nil
	}

	s.logger.Info("Fetching prices from DEXScreener", "dexScreenerID", dexID, "tokenCount", len(tokens))

	var cached, missing atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for _, batch := range utils.Batch(tokens, s.batchSize) {
		g.Go(func() error {
			found, notFound := s.fetchBatch(gctx, dexID, batch)
			cached.Add(int64(found))
			missing.Add(int64(notFound))
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Finished loading token prices from DEXScreener",
		"cached", cached.Load(),
		"failedOrMissing", missing.Load())
	return nil
}

func (s *tokenPriceServiceImpl) fetchBatch(ctx context.Context, dexID string, batch []entity.TokenInfo) (found, missing int) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	addresses := make([]string, len(batch))
	for i, token := range batch {
		addresses[i] = token.Address
	}

	pairs, err := s.dexscreenerClient.GetTokenPairsByAddresses(ctx, dexID, addresses)
	if err != nil {
		s.logger.Error("Failed to get token pairs from DEXScreener",
			"dexScreenerID", dexID,
			"token_addresses_count", len(addresses),
			"error", err)
		return 0, len(batch)
	}

	ts := now().Unix()
	for _, token := range batch {
		pair := s.selectBestPair(pairs, token.Address)
		if pair == nil {
			missing++
			continue
		}
		price, err := decimal.NewFromString(pair.PriceUsd)
		if err != nil {
			s.logger.Warn("Failed to parse token price from DEXScreener",
				"tokenAddress", token.Address,
				"price_string", pair.PriceUsd,
				"error", err)
			missing++
			continue
		}
		s.cache.Set(strings.ToLower(token.Address), entity.PriceUpdate{
			TokenAddress: token.Address,
			Symbol:       token.Symbol,
			Price:        utils.FormatUSD(price),
			Change24h:    pair.PriceChange.H24,
			Timestamp:    ts,
		}, gocache.DefaultExpiration)
		found++
	}
	return found, missing
}

// selectBestPair prefers the most liquid stablecoin-quoted pair, then the most liquid pair overall.
func (s *tokenPriceServiceImpl) selectBestPair(pairs []entity.PairData, baseTokenAddress string) *entity.PairData {
	var bestOverallPair *entity.PairData
	var bestStablecoinPair *entity.PairData

	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if pair.PriceUsd == "" || pair.PriceUsd == "0" {
			continue
		}

		if _, isStablecoin := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; isStablecoin {
			if bestStablecoinPair == nil || pair.LiquidityUSD() > bestStablecoinPair.LiquidityUSD() {
				bestStablecoinPair = pair
			}
		}
		if bestOverallPair == nil || pair.LiquidityUSD() > bestOverallPair.LiquidityUSD() {
			bestOverallPair = pair
		}
	}

	if bestStablecoinPair != nil {
		s.logger.Debug("Selected best price from stablecoin pair",
			"baseTokenAddress", baseTokenAddress,
			"pairAddress", bestStablecoinPair.PairAddress,
			"priceUsd", bestStablecoinPair.PriceUsd,
			"liquidityUsd", bestStablecoinPair.LiquidityUSD(),
			"quoteToken", bestStablecoinPair.QuoteToken.Symbol)
		return bestStablecoinPair
	}
	if bestOverallPair == nil {
		s.logger.Warn("No suitable price found from pairs",
			"baseTokenAddress", baseTokenAddress,
			"evaluatedPairCount", len(pairs))
	}
	return bestOverallPair
}

// GetPrice implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) GetPrice(tokenAddress string) (entity.PriceUpdate, bool) {
	v, ok := s.cache.Get(strings.ToLower(tokenAddress))
	if !ok {
		return entity.PriceUpdate{}, false
	}
	p, ok := v.(entity.PriceUpdate)
	return p, ok
}

// GetPrices implements port.TokenPriceService. Unknown tokens are skipped.
func (s *tokenPriceServiceImpl) GetPrices(tokenAddresses []string) []entity.PriceUpdate {
	out := make([]entity.PriceUpdate, 0, len(tokenAddresses))
	for _, addr := range tokenAddresses {
		if p, ok := s.GetPrice(addr); ok {
			out = append(out, p)
		}
	}
	return out
}
