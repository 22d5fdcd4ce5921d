package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stream_insight/internal/app/port"
	"stream_insight/internal/app/stream"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/broadcast"
	"stream_insight/internal/pkg/utils"
)

// SessionConfig tunes a wallet session.
type SessionConfig struct {
	LoadingTimeout  time.Duration
	RefreshInterval time.Duration // 0 disables the periodic RPC refresh
	SeedTimeout     time.Duration
	TxLimit         int
	UsePlaceholders bool
	EventBuffer     int
	TrackedTokens   []entity.TokenInfo
}

// Session ties one wallet's stream subscriptions, seed fetch and reconciled state together.
type Session struct {
	wallet  string
	cfg     SessionConfig
	manager *stream.Manager
	state   *WalletState
	fetcher *BalanceFetcher
	prices  port.TokenPriceService
	events  *broadcast.Hub[entity.StateEvent]
	sink    func(entity.StateEvent)
	logger  port.Logger

	mu           sync.Mutex
	started      bool
	stopped      bool
	cancels      []stream.CancelFunc
	stopObserver func()
	loadingTimer *time.Timer
	cancelRun    context.CancelFunc
	wg           sync.WaitGroup
}

// NewSession creates an idle session. prices and sink may be nil.
func NewSession(
	wallet string,
	cfg SessionConfig,
	manager *stream.Manager,
	fetcher *BalanceFetcher,
	prices port.TokenPriceService,
	sink func(entity.StateEvent),
	logger port.Logger,
) *Session {
	s := &Session{
		wallet:  wallet,
		cfg:     cfg,
		manager: manager,
		fetcher: fetcher,
		prices:  prices,
		events:  broadcast.NewHub[entity.StateEvent](),
		sink:    sink,
		logger:  logger,
	}
	s.state = NewWalletState(wallet, cfg.TxLimit, s.publish)
	return s
}

func (s *Session) publish(ev entity.StateEvent) {
	s.events.Publish(ev)
	if s.sink != nil {
		s.sink(ev)
	}
}

// Wallet returns the address the session tracks.
func (s *Session) Wallet() string { return s.wallet }

// State exposes the reconciled view of the wallet.
func (s *Session) State() *WalletState { return s.state }

// Connection returns the state of the stream connection.
func (s *Session) Connection() entity.ConnectionState { return s.manager.State() }

// Events streams state change events until the returned function is called.
func (s *Session) Events() (<-chan entity.StateEvent, func()) {
	buffer := s.cfg.EventBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return s.events.Subscribe(buffer)
}

// priceTokens returns the token addresses whose prices the session follows.
func (s *Session) priceTokens() []string {
	tokens := make([]string, 0, len(s.cfg.TrackedTokens))
	for _, t := range s.cfg.TrackedTokens {
		tokens = append(tokens, t.Address)
	}
	if len(tokens) == 0 && s.cfg.UsePlaceholders {
		for _, b := range PlaceholderBalances(s.wallet) {
			tokens = append(tokens, b.ContractAddress)
		}
	}
	return utils.UniqueLower(tokens)
}

// Start shows placeholders, awaits the seed fetch and then opens the stream subscriptions
// in the background. Calling Start again is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancelRun = cancel
	s.mu.Unlock()

	tokens := s.priceTokens()
	if s.cfg.UsePlaceholders {
		s.applyPlaceholders(tokens)
	}

	s.seed(ctx, tokens)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.stopObserver = s.manager.OnStateChange(func(state entity.ConnectionState) {
		s.state.SetConnection(state)
	})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.manager.Initialize(runCtx); err != nil {
			s.logger.Warn("Stream unavailable, serving seed and placeholder data", "wallet", s.wallet, "error", err)
		}
	}()

	s.cancels = append(s.cancels,
		s.manager.SubscribeToWalletBalances(s.wallet, func(b []entity.TokenBalance) {
			s.state.ApplyBalances(entity.TierStream, b)
		}),
		s.manager.SubscribeToTransactions(s.wallet, func(tx entity.Transaction) {
			s.state.AddTransaction(entity.TierStream, tx)
		}),
		s.manager.SubscribeToYieldPositions(s.wallet, func(p []entity.YieldPosition) {
			s.state.ApplyPositions(entity.TierStream, p)
		}),
	)
	if len(tokens) > 0 {
		s.cancels = append(s.cancels, s.manager.SubscribeToTokenPrices(tokens, func(p entity.PriceUpdate) {
			s.state.UpsertPrice(entity.TierStream, p)
		}))
	}

	if s.cfg.LoadingTimeout > 0 {
		s.loadingTimer = time.AfterFunc(s.cfg.LoadingTimeout, func() { s.state.ExpireLoading() })
	}
	if s.cfg.RefreshInterval > 0 {
		s.wg.Add(1)
		go s.refreshLoop(runCtx, tokens)
	}
	s.logger.Info("Wallet session started", "wallet", s.wallet, "topics", len(s.cancels))
}

func (s *Session) applyPlaceholders(tokens []string) {
	s.state.ApplyBalances(entity.TierPlaceholder, PlaceholderBalances(s.wallet))
	s.state.ApplyTransactions(entity.TierPlaceholder, PlaceholderTransactions(s.wallet))
	s.state.ApplyPositions(entity.TierPlaceholder, PlaceholderPositions(s.wallet))
	for _, p := range PlaceholderPrices(tokens) {
		s.state.UpsertPrice(entity.TierPlaceholder, p)
	}
}

// seed reads balances and cached prices concurrently at Seed tier.
func (s *Session) seed(ctx context.Context, tokens []string) {
	if s.cfg.SeedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SeedTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balances := s.fetcher.FetchAll(gctx, s.wallet, s.cfg.TrackedTokens)
		if !s.state.ApplyBalances(entity.TierSeed, balances) {
			s.logger.Debug("Seed balances not applied", "wallet", s.wallet, "count", len(balances))
		}
		return nil
	})
	if s.prices != nil && len(tokens) > 0 {
		g.Go(func() error {
			for _, p := range s.prices.GetPrices(tokens) {
				s.state.UpsertPrice(entity.TierSeed, p)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Session) refreshLoop(ctx context.Context, tokens []string) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logger.Debug("Refreshing wallet from RPC", "wallet", s.wallet)
			s.seed(ctx, tokens)
		}
	}
}

// Stop cancels every subscription, closes the stream and ends all event subscribers.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	cancels := s.cancels
	s.cancels = nil
	if s.loadingTimer != nil {
		s.loadingTimer.Stop()
	}
	if s.cancelRun != nil {
		s.cancelRun()
	}
	stopObserver := s.stopObserver
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	err := s.manager.Close()
	if stopObserver != nil {
		stopObserver()
	}
	s.wg.Wait()
	s.state.SetConnection(entity.StateClosed)
	s.events.Close()

	s.logger.Info("Wallet session stopped", "wallet", s.wallet)
	return err
}
