package service

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/logger"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) has(subject string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

type memorySnapshots struct {
	mu    sync.Mutex
	saved map[string]entity.WalletPortfolio
}

func (m *memorySnapshots) Save(_ context.Context, p entity.WalletPortfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[p.WalletAddress] = p
	return nil
}

func (m *memorySnapshots) Load(_ context.Context, wallet string) (*entity.WalletPortfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.saved[wallet]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memorySnapshots) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func newTestTracker(balance *big.Int, opts ...TrackerOption) *Tracker {
	nop := logger.NewNopLogger()
	fetcher := NewBalanceFetcher(seededClient(balance), nil, nil, time.Second, 0, nop)
	return NewTracker(unreachableDialer{}, fetcher, SessionConfig{UsePlaceholders: true}, nop, opts...)
}

func TestTracker_RejectsInvalidAddress(t *testing.T) {
	tr := newTestTracker(big.NewInt(0))
	defer tr.Close()

	for _, addr := range []string{"", "0x123", "not-a-wallet"} {
		err := tr.StartSession(context.Background(), addr)
		assert.ErrorIs(t, err, entity.ErrInvalidAddress, addr)
	}
	_, err := tr.Transactions("0xzz", 5)
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
}

func TestTracker_SessionLifecycle(t *testing.T) {
	tr := newTestTracker(wei("3000000000000000000"))
	defer tr.Close()
	ctx := context.Background()

	_, err := tr.Portfolio(ctx, sessionWallet)
	require.ErrorIs(t, err, entity.ErrSessionNotFound)

	mixed := "0x" + strings.ToUpper(sessionWallet[2:])
	require.NoError(t, tr.StartSession(ctx, mixed))
	require.NoError(t, tr.StartSession(ctx, sessionWallet))

	conns := tr.Connections()
	require.Len(t, conns, 1)
	assert.Contains(t, conns, sessionWallet)

	portfolio, err := tr.Portfolio(ctx, mixed)
	require.NoError(t, err)
	assert.Equal(t, sessionWallet, portfolio.WalletAddress)
	require.Len(t, portfolio.Balances, 1)
	assert.Equal(t, "3", portfolio.Balances[0].Balance)

	txs, err := tr.Transactions(sessionWallet, 2)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	events, cancel, err := tr.Events(sessionWallet)
	require.NoError(t, err)
	cancel()
	assert.NotNil(t, events)

	prices := tr.Prices([]string{"0x0000000000000000000000000000000000000001"})
	require.Len(t, prices, 1)
	assert.Equal(t, "STT", prices[0].Symbol)

	tr.StopSession(sessionWallet)
	assert.Empty(t, tr.Connections())
	_, err = tr.Transactions(sessionWallet, 2)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestTracker_SinksReceiveEvents(t *testing.T) {
	pub := &recordingPublisher{}
	store := &memorySnapshots{saved: make(map[string]entity.WalletPortfolio)}
	tr := newTestTracker(wei("1000000000000000000"), WithPublisher(pub), WithSnapshotStore(store))
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, sessionWallet))
	require.Eventually(t, func() bool {
		return pub.has(sessionWallet+".balances") && pub.has(sessionWallet+".transactions") && store.count() == 1
	}, time.Second, 5*time.Millisecond)

	tr.StopSession(sessionWallet)
	portfolio, err := tr.Portfolio(ctx, sessionWallet)
	require.NoError(t, err)
	assert.Equal(t, sessionWallet, portfolio.WalletAddress)
	assert.NotEmpty(t, portfolio.Balances)

	tr.Close()
	assert.ErrorIs(t, tr.StartSession(ctx, sessionWallet), entity.ErrManagerClosed)
}
