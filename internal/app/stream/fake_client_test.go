package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
)

type fakeSubscription struct {
	id           string
	err          error
	unsubscribed atomic.Int32
}

func (s *fakeSubscription) ID() string { return s.id }

func (s *fakeSubscription) Unsubscribe() error {
	s.unsubscribed.Add(1)
	return s.err
}

type fakeClient struct {
	mu             sync.Mutex
	subs           map[string]*fakeSubscription
	handlers       map[string]func([]byte)
	unsubscribeErr map[string]error
	subscribeGate  chan struct{}
	entered        chan struct{}
	closed         atomic.Int32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		subs:           make(map[string]*fakeSubscription),
		handlers:       make(map[string]func([]byte)),
		unsubscribeErr: make(map[string]error),
	}
}

func (c *fakeClient) Subscribe(_ context.Context, topic entity.TopicDescriptor, onData func([]byte), _ func(error)) (port.StreamSubscription, error) {
	if c.entered != nil {
		c.entered <- struct{}{}
	}
	if c.subscribeGate != nil {
		<-c.subscribeGate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := &fakeSubscription{id: uuid.NewString(), err: c.unsubscribeErr[topic.Key]}
	c.subs[topic.Key] = sub
	c.handlers[topic.Key] = onData
	return sub, nil
}

func (c *fakeClient) Close() { c.closed.Add(1) }

func (c *fakeClient) subscription(key string) *fakeSubscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[key]
}

func (c *fakeClient) deliver(key, data string) {
	c.mu.Lock()
	fn := c.handlers[key]
	c.mu.Unlock()
	if fn != nil {
		fn([]byte(data))
	}
}

type fakeDialer struct {
	client *fakeClient
	err    error
	gate   chan struct{}
	dials  atomic.Int32
}

func (d *fakeDialer) Dial(context.Context) (port.StreamClient, error) {
	d.dials.Add(1)
	if d.gate != nil {
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.client, nil
}

func (d *fakeDialer) Endpoint() string { return "wss://stream.test/ws" }

func liveSubscriptions(m *Manager) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := 0
	for _, h := range m.handles {
		h.mu.Lock()
		if h.sub != nil {
			live++
		}
		h.mu.Unlock()
	}
	return live
}

func waitSubscribed(t *testing.T, c *fakeClient, key string) *fakeSubscription {
	t.Helper()
	require.Eventually(t, func() bool { return c.subscription(key) != nil }, 2*time.Second, 5*time.Millisecond)
	return c.subscription(key)
}
