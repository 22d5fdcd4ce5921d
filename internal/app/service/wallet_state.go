package service

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/utils"
)

// DefaultTransactionLimit is the number of transactions kept per wallet unless configured.
const DefaultTransactionLimit = 10

// Seed balances replace placeholders only when at least one balance exceeds this amount.
var balanceDustFloor = decimal.New(1, -3)

var now = time.Now

// WalletState is the reconciled view of one wallet. Every collection remembers the tier of
// the data it holds; writes from a lower tier are rejected.
type WalletState struct {
	wallet   string
	txLimit  int
	onChange func(entity.StateEvent)

	mu            sync.RWMutex
	balances      []entity.TokenBalance
	balancesTier  entity.SourceTier
	txs           []entity.Transaction
	txTier        entity.SourceTier
	positions     []entity.YieldPosition
	positionsTier entity.SourceTier
	prices        map[string]entity.PriceUpdate
	priceTiers    map[string]entity.SourceTier
	status        entity.CollectionStatus
	connection    entity.ConnectionState
	updatedAt     int64
}

// NewWalletState creates an empty state with every collection loading. onChange, when set,
// is called outside the lock after each accepted change.
func NewWalletState(wallet string, txLimit int, onChange func(entity.StateEvent)) *WalletState {
	if txLimit <= 0 {
		txLimit = DefaultTransactionLimit
	}
	return &WalletState{
		wallet:     wallet,
		txLimit:    txLimit,
		onChange:   onChange,
		prices:     make(map[string]entity.PriceUpdate),
		priceTiers: make(map[string]entity.SourceTier),
		status: entity.CollectionStatus{
			Balances:     entity.DataLoading,
			Transactions: entity.DataLoading,
			Yield:        entity.DataLoading,
			Prices:       entity.DataLoading,
		},
		connection: entity.StateUninitialized,
	}
}

func (s *WalletState) emit(kind entity.EventKind, tier entity.SourceTier) {
	if s.onChange == nil {
		return
	}
	s.mu.RLock()
	ev := entity.StateEvent{
		Wallet:     s.wallet,
		Kind:       kind,
		Source:     tier,
		Connection: s.connection,
		At:         s.updatedAt,
	}
	s.mu.RUnlock()
	s.onChange(ev)
}

func (s *WalletState) touchLocked() {
	s.updatedAt = now().Unix()
}

// ApplyBalances replaces the balance set when tier is at least the current tier.
// Seed lists holding only dust are ignored.
func (s *WalletState) ApplyBalances(tier entity.SourceTier, balances []entity.TokenBalance) bool {
	if tier == entity.TierSeed && !hasNonDustBalance(balances) {
		return false
	}
	deduped := dedupeBalances(balances)

	s.mu.Lock()
	if tier < s.balancesTier || (tier == s.balancesTier && slices.Equal(deduped, s.balances)) {
		s.mu.Unlock()
		return false
	}
	s.balances = deduped
	s.balancesTier = tier
	if len(deduped) > 0 {
		s.status.Balances = entity.DataLoaded
	}
	s.touchLocked()
	s.mu.Unlock()

	s.emit(entity.EventBalances, tier)
	return true
}

// AddTransaction prepends tx, replacing an older entry with the same hash, and truncates to
// the limit. The first real transaction evicts every placeholder entry.
func (s *WalletState) AddTransaction(tier entity.SourceTier, tx entity.Transaction) bool {
	s.mu.Lock()
	changed := s.addTransactionLocked(tier, tx)
	if changed {
		s.touchLocked()
	}
	s.mu.Unlock()

	if changed {
		s.emit(entity.EventTransactions, tier)
	}
	return changed
}

// ApplyTransactions adds a most-recent-first list under the AddTransaction rules.
func (s *WalletState) ApplyTransactions(tier entity.SourceTier, txs []entity.Transaction) bool {
	s.mu.Lock()
	changed := false
	for i := len(txs) - 1; i >= 0; i-- {
		if s.addTransactionLocked(tier, txs[i]) {
			changed = true
		}
	}
	if changed {
		s.touchLocked()
	}
	s.mu.Unlock()

	if changed {
		s.emit(entity.EventTransactions, tier)
	}
	return changed
}

func (s *WalletState) addTransactionLocked(tier entity.SourceTier, tx entity.Transaction) bool {
	if !entity.IsValidTxHash(tx.Hash) || tier == entity.TierNone {
		return false
	}
	if !tier.IsReal() && s.txTier.IsReal() {
		return false
	}

	current := s.txs
	if tier.IsReal() && !s.txTier.IsReal() {
		current = nil
	}
	next := make([]entity.Transaction, 0, len(current)+1)
	next = append(next, tx)
	for _, existing := range current {
		if existing.Hash != tx.Hash {
			next = append(next, existing)
		}
	}
	if len(next) > s.txLimit {
		next = next[:s.txLimit]
	}
	if slices.Equal(next, s.txs) {
		return false
	}

	s.txs = next
	if tier > s.txTier {
		s.txTier = tier
	}
	s.status.Transactions = entity.DataLoaded
	return true
}

// ApplyPositions replaces the yield positions when tier is at least the current tier.
func (s *WalletState) ApplyPositions(tier entity.SourceTier, positions []entity.YieldPosition) bool {
	deduped := dedupePositions(positions)

	s.mu.Lock()
	if tier < s.positionsTier || (tier == s.positionsTier && slices.Equal(deduped, s.positions)) {
		s.mu.Unlock()
		return false
	}
	s.positions = deduped
	s.positionsTier = tier
	if len(deduped) > 0 {
		s.status.Yield = entity.DataLoaded
	}
	s.touchLocked()
	s.mu.Unlock()

	s.emit(entity.EventYield, tier)
	return true
}

// UpsertPrice stores p under its token address unless a higher tier already holds that token.
func (s *WalletState) UpsertPrice(tier entity.SourceTier, p entity.PriceUpdate) bool {
	key := strings.ToLower(p.TokenAddress)
	if key == "" {
		return false
	}

	s.mu.Lock()
	current, ok := s.prices[key]
	if tier < s.priceTiers[key] || (ok && tier == s.priceTiers[key] && current == p) {
		s.mu.Unlock()
		return false
	}
	s.prices[key] = p
	s.priceTiers[key] = tier
	s.status.Prices = entity.DataLoaded
	s.touchLocked()
	s.mu.Unlock()

	s.emit(entity.EventPrices, tier)
	return true
}

// SetConnection records the stream connection state.
func (s *WalletState) SetConnection(state entity.ConnectionState) bool {
	s.mu.Lock()
	if s.connection == state {
		s.mu.Unlock()
		return false
	}
	s.connection = state
	s.mu.Unlock()

	s.emit(entity.EventConnection, entity.TierNone)
	return true
}

// ExpireLoading moves every collection still loading without data to empty.
func (s *WalletState) ExpireLoading() bool {
	s.mu.Lock()
	changed := false
	expire := func(st *entity.DataStatus) {
		if *st == entity.DataLoading {
			*st = entity.DataEmpty
			changed = true
		}
	}
	expire(&s.status.Balances)
	expire(&s.status.Transactions)
	expire(&s.status.Yield)
	expire(&s.status.Prices)
	s.mu.Unlock()

	if changed {
		s.emit(entity.EventStatus, entity.TierNone)
	}
	return changed
}

// Balances returns a copy of the current balances.
func (s *WalletState) Balances() []entity.TokenBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.balances)
}

// Transactions returns up to limit transactions, most recent first. limit <= 0 returns all.
func (s *WalletState) Transactions(limit int) []entity.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.txs) {
		limit = len(s.txs)
	}
	return slices.Clone(s.txs[:limit])
}

// Positions returns a copy of the current yield positions.
func (s *WalletState) Positions() []entity.YieldPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.positions)
}

// Price returns the latest price for a token.
func (s *WalletState) Price(tokenAddress string) (entity.PriceUpdate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[strings.ToLower(tokenAddress)]
	return p, ok
}

// PortfolioValue sums the values of the de-duplicated balances.
func (s *WalletState) PortfolioValue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return portfolioValue(s.balances)
}

// WeightedChange24h is the value-weighted mean 24h change; 0 when the portfolio is worth nothing.
func (s *WalletState) WeightedChange24h() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return weightedChange(s.balances)
}

// TotalYieldDeposited sums the deposited amounts of every yield position.
func (s *WalletState) TotalYieldDeposited() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalDeposited(s.positions)
}

// Snapshot returns a deep copy of the state together with its aggregates.
func (s *WalletState) Snapshot() entity.WalletPortfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prices := make(map[string]entity.PriceUpdate, len(s.prices))
	for k, p := range s.prices {
		prices[k] = p
	}
	return entity.WalletPortfolio{
		WalletAddress:       s.wallet,
		Balances:            nonNilClone(s.balances),
		Transactions:        nonNilClone(s.txs),
		YieldPositions:      nonNilClone(s.positions),
		Prices:              prices,
		TotalValueUSD:       portfolioValue(s.balances),
		WeightedChange24h:   weightedChange(s.balances),
		TotalYieldDeposited: totalDeposited(s.positions),
		Status:              s.status,
		Sources: entity.CollectionSources{
			Balances:     s.balancesTier,
			Transactions: s.txTier,
			Yield:        s.positionsTier,
			Prices:       s.lowestPriceTierLocked(),
		},
		Connection: s.connection,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *WalletState) lowestPriceTierLocked() entity.SourceTier {
	lowest := entity.TierNone
	for _, tier := range s.priceTiers {
		if lowest == entity.TierNone || tier < lowest {
			lowest = tier
		}
	}
	return lowest
}

func nonNilClone[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}

func dedupeBalances(in []entity.TokenBalance) []entity.TokenBalance {
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.TokenBalance, 0, len(in))
	for _, b := range in {
		key := b.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	return out
}

func dedupePositions(in []entity.YieldPosition) []entity.YieldPosition {
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.YieldPosition, 0, len(in))
	for _, p := range in {
		key := strings.ToLower(p.Key())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func hasNonDustBalance(balances []entity.TokenBalance) bool {
	for _, b := range balances {
		if utils.ParseMoney(b.Balance).GreaterThan(balanceDustFloor) {
			return true
		}
	}
	return false
}

func portfolioValue(balances []entity.TokenBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(utils.ParseMoney(b.Value))
	}
	return total
}

func weightedChange(balances []entity.TokenBalance) float64 {
	total := portfolioValue(balances)
	if total.IsZero() {
		return 0
	}
	weighted := decimal.Zero
	for _, b := range balances {
		weighted = weighted.Add(decimal.NewFromFloat(b.Change24h).Mul(utils.ParseMoney(b.Value)))
	}
	return weighted.Div(total).InexactFloat64()
}

func totalDeposited(positions []entity.YieldPosition) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(utils.ParseMoney(p.Deposited))
	}
	return total
}
