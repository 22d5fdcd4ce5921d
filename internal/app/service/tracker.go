package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"stream_insight/internal/app/port"
	"stream_insight/internal/app/stream"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/metrics"
	"stream_insight/internal/pkg/utils"
)

const (
	sinkQueueSize   = 256
	sinkCallTimeout = 5 * time.Second
)

// Tracker is the registry of live wallet sessions. It implements port.PortfolioService.
type Tracker struct {
	dialer    port.StreamDialer
	fetcher   *BalanceFetcher
	prices    port.TokenPriceService
	publisher port.EventPublisher
	snapshots port.SnapshotStore
	cfg       SessionConfig
	logger    port.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	sinkQueue chan entity.StateEvent
	sinkDone  chan struct{}
}

// TrackerOption configures optional collaborators of a Tracker.
type TrackerOption func(*Tracker)

// WithPriceService prices token balances and seeds session prices from the cache.
func WithPriceService(p port.TokenPriceService) TrackerOption {
	return func(t *Tracker) { t.prices = p }
}

// WithPublisher forwards every state event to an external broker.
func WithPublisher(p port.EventPublisher) TrackerOption {
	return func(t *Tracker) { t.publisher = p }
}

// WithSnapshotStore persists the reconciled view after every data change.
func WithSnapshotStore(s port.SnapshotStore) TrackerOption {
	return func(t *Tracker) { t.snapshots = s }
}

// NewTracker creates an empty registry.
func NewTracker(dialer port.StreamDialer, fetcher *BalanceFetcher, cfg SessionConfig, logger port.Logger, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		dialer:   dialer,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.publisher != nil || t.snapshots != nil {
		t.sinkQueue = make(chan entity.StateEvent, sinkQueueSize)
		t.sinkDone = make(chan struct{})
		go t.runSinks()
	}
	return t
}

func normalizeWallet(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidAddress, address)
	}
	return strings.ToLower(address), nil
}

func (t *Tracker) session(address string) (*Session, error) {
	key, err := normalizeWallet(address)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[key]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return s, nil
}

// StartSession implements port.PortfolioService.
func (t *Tracker) StartSession(ctx context.Context, walletAddress string) error {
	key, err := normalizeWallet(walletAddress)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return entity.ErrManagerClosed
	}
	if _, ok := t.sessions[key]; ok {
		t.mu.Unlock()
		return nil
	}
	manager := stream.NewManager(t.dialer, t.logger)
	s := NewSession(key, t.cfg, manager, t.fetcher, t.prices, t.enqueue, t.logger)
	t.sessions[key] = s
	t.mu.Unlock()

	metrics.SessionsActive.Inc()
	s.Start(ctx)
	return nil
}

// StopSession implements port.PortfolioService.
func (t *Tracker) StopSession(walletAddress string) {
	key, err := normalizeWallet(walletAddress)
	if err != nil {
		return
	}
	t.mu.Lock()
	s, ok := t.sessions[key]
	delete(t.sessions, key)
	t.mu.Unlock()
	if !ok {
		return
	}

	metrics.SessionsActive.Dec()
	if err := s.Stop(); err != nil {
		t.logger.Warn("Wallet session stopped with errors", "wallet", key, "error", err)
	}
}

// Portfolio implements port.PortfolioService. Without a live session the last stored
// snapshot is returned when a snapshot store is configured.
func (t *Tracker) Portfolio(ctx context.Context, walletAddress string) (entity.WalletPortfolio, error) {
	s, err := t.session(walletAddress)
	if err == nil {
		return s.State().Snapshot(), nil
	}
	if !errors.Is(err, entity.ErrSessionNotFound) || t.snapshots == nil {
		return entity.WalletPortfolio{}, err
	}

	key, _ := normalizeWallet(walletAddress)
	stored, loadErr := t.snapshots.Load(ctx, key)
	if loadErr != nil {
		return entity.WalletPortfolio{}, fmt.Errorf("failed to load stored snapshot: %w", loadErr)
	}
	if stored == nil {
		return entity.WalletPortfolio{}, entity.ErrSessionNotFound
	}
	return *stored, nil
}

// Transactions implements port.PortfolioService.
func (t *Tracker) Transactions(walletAddress string, limit int) ([]entity.Transaction, error) {
	s, err := t.session(walletAddress)
	if err != nil {
		return nil, err
	}
	return s.State().Transactions(limit), nil
}

// FetchSeed implements port.PortfolioService.
func (t *Tracker) FetchSeed(ctx context.Context, walletAddress string) []entity.TokenBalance {
	return t.fetcher.FetchSeedBalance(ctx, walletAddress)
}

// Prices implements port.PortfolioService. Cached DEXScreener prices come first; tokens
// missing there are looked up in the live sessions.
func (t *Tracker) Prices(tokenAddresses []string) []entity.PriceUpdate {
	tokenAddresses = utils.UniqueLower(tokenAddresses)
	out := make([]entity.PriceUpdate, 0, len(tokenAddresses))
	missing := tokenAddresses
	if t.prices != nil {
		out = append(out, t.prices.GetPrices(tokenAddresses)...)
		found := make(map[string]struct{}, len(out))
		for _, p := range out {
			found[strings.ToLower(p.TokenAddress)] = struct{}{}
		}
		missing = missing[:0:0]
		for _, addr := range tokenAddresses {
			if _, ok := found[strings.ToLower(addr)]; !ok {
				missing = append(missing, addr)
			}
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, addr := range missing {
		for _, s := range t.sessions {
			if p, ok := s.State().Price(addr); ok {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Events implements port.PortfolioService.
func (t *Tracker) Events(walletAddress string) (<-chan entity.StateEvent, func(), error) {
	s, err := t.session(walletAddress)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.Events()
	return ch, cancel, nil
}

// Connections implements port.PortfolioService.
func (t *Tracker) Connections() map[string]entity.ConnectionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]entity.ConnectionState, len(t.sessions))
	for key, s := range t.sessions {
		out[key] = s.Connection()
	}
	return out
}

// Close stops every session and drains the event sinks.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	sessions := t.sessions
	t.sessions = make(map[string]*Session)
	t.mu.Unlock()

	for key, s := range sessions {
		metrics.SessionsActive.Dec()
		if err := s.Stop(); err != nil {
			t.logger.Warn("Wallet session stopped with errors", "wallet", key, "error", err)
		}
	}
	if t.sinkQueue != nil {
		close(t.sinkQueue)
		<-t.sinkDone
	}
}

func (t *Tracker) enqueue(ev entity.StateEvent) {
	if t.sinkQueue == nil {
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.sinkQueue <- ev:
	default:
		t.logger.Warn("Event sink queue full, event dropped", "wallet", ev.Wallet, "kind", ev.Kind)
	}
}

func (t *Tracker) runSinks() {
	defer close(t.sinkDone)
	for ev := range t.sinkQueue {
		ctx, cancel := context.WithTimeout(context.Background(), sinkCallTimeout)
		if t.publisher != nil {
			subject := ev.Wallet + "." + string(ev.Kind)
			if err := t.publisher.Publish(ctx, subject, ev); err != nil {
				t.logger.Warn("Failed to publish state event", "subject", subject, "error", err)
			}
		}
		if t.snapshots != nil && ev.Kind != entity.EventConnection {
			t.saveSnapshot(ctx, ev.Wallet)
		}
		cancel()
	}
}

func (t *Tracker) saveSnapshot(ctx context.Context, wallet string) {
	t.mu.RLock()
	s, ok := t.sessions[wallet]
	t.mu.RUnlock()
	if !ok {
		return
	}
	if err := t.snapshots.Save(ctx, s.State().Snapshot()); err != nil {
		t.logger.Warn("Failed to store wallet snapshot", "wallet", wallet, "error", err)
	}
}
