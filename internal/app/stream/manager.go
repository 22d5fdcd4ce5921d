// Package stream manages the vendor push connection of one wallet session and routes
// its payloads to typed callbacks.
package stream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/pkg/metrics"
)

// CancelFunc ends a subscription. It is idempotent and safe to call from any goroutine.
type CancelFunc func()

var errDisconnected = errors.New("disconnected during initialization")

// Manager owns the lazily dialed stream client shared by every topic of one wallet.
type Manager struct {
	dialer port.StreamDialer
	logger port.Logger

	baseCtx    context.Context
	cancelBase context.CancelFunc

	initGroup singleflight.Group

	mu           sync.Mutex
	state        entity.ConnectionState
	client       port.StreamClient
	generation   uint64
	handles      map[string]*handle
	observers    map[int]func(entity.ConnectionState)
	nextObserver int
}

type handle struct {
	id    string
	topic entity.TopicDescriptor

	mu        sync.Mutex
	cancelled bool
	sub       port.StreamSubscription
}

func (h *handle) isCancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// markCancelled flips the handle to cancelled and returns the live subscription, if any.
// ok is false when the handle was already cancelled.
func (h *handle) markCancelled() (sub port.StreamSubscription, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return nil, false
	}
	h.cancelled = true
	sub, h.sub = h.sub, nil
	return sub, true
}

// NewManager creates a manager in the Uninitialized state. Nothing is dialed until
// Initialize or the first Subscribe call.
func NewManager(dialer port.StreamDialer, logger port.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		dialer:     dialer,
		logger:     logger,
		baseCtx:    ctx,
		cancelBase: cancel,
		state:      entity.StateUninitialized,
		handles:    make(map[string]*handle),
		observers:  make(map[int]func(entity.ConnectionState)),
	}
}

// Initialize dials the stream transport. It is a no-op when already Ready, and concurrent
// callers share a single dial.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case entity.StateClosed:
		m.mu.Unlock()
		return entity.ErrManagerClosed
	case entity.StateReady:
		m.mu.Unlock()
		return nil
	}
	key := strconv.FormatUint(m.generation, 10)
	m.mu.Unlock()

	// Dials are shared per generation; a Disconnect starts a new one.
	_, err, _ := m.initGroup.Do(key, func() (any, error) {
		return nil, m.initialize(ctx)
	})
	return err
}

func (m *Manager) initialize(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case entity.StateClosed:
		m.mu.Unlock()
		return entity.ErrManagerClosed
	case entity.StateReady:
		m.mu.Unlock()
		return nil
	}
	gen := m.generation
	notify := m.setStateLocked(entity.StateInitializing)
	m.mu.Unlock()
	notify()

	client, err := m.dialer.Dial(ctx)

	m.mu.Lock()
	if err != nil {
		notify = func() {}
		if m.state == entity.StateInitializing {
			notify = m.setStateLocked(entity.StateUninitialized)
		}
		m.mu.Unlock()
		notify()
		metrics.InitializeTotal.WithLabelValues("error").Inc()
		m.logger.Warn("Stream transport initialization failed", "endpoint", m.endpoint(), "error", err)
		return &entity.TransportInitError{Endpoint: m.endpoint(), Err: err}
	}
	if m.state == entity.StateClosed {
		m.mu.Unlock()
		client.Close()
		return entity.ErrManagerClosed
	}
	if m.generation != gen {
		m.mu.Unlock()
		client.Close()
		return &entity.TransportInitError{Endpoint: m.endpoint(), Err: errDisconnected}
	}
	m.client = client
	notify = m.setStateLocked(entity.StateReady)
	m.mu.Unlock()
	notify()

	metrics.InitializeTotal.WithLabelValues("ok").Inc()
	m.logger.Info("Stream transport ready", "endpoint", m.endpoint())
	return nil
}

func (m *Manager) endpoint() string {
	if e, ok := m.dialer.(interface{ Endpoint() string }); ok {
		return e.Endpoint()
	}
	return "stream"
}

// State returns the current connection state.
func (m *Manager) State() entity.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the manager is Ready.
func (m *Manager) IsConnected() bool {
	return m.State() == entity.StateReady
}

// OnStateChange registers fn to be called after every state transition.
// The returned function removes the observer.
func (m *Manager) OnStateChange(fn func(entity.ConnectionState)) func() {
	m.mu.Lock()
	id := m.nextObserver
	m.nextObserver++
	m.observers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

// setStateLocked changes the state and returns the notification to run once m.mu is released.
func (m *Manager) setStateLocked(next entity.ConnectionState) func() {
	if m.state == next {
		return func() {}
	}
	m.state = next
	fns := make([]func(entity.ConnectionState), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(next)
		}
	}
}

// ActiveSubscriptions returns the number of topics that are subscribed or pending.
func (m *Manager) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// subscribe registers a topic and returns its cancel function immediately. Initialization
// and the vendor subscribe happen on a background goroutine.
func (m *Manager) subscribe(topic entity.TopicDescriptor, route func([]byte)) CancelFunc {
	h := &handle{id: uuid.NewString(), topic: topic}

	m.mu.Lock()
	if m.state == entity.StateClosed {
		m.mu.Unlock()
		m.logger.Debug("Subscribe on closed manager ignored", "topic", topic.Key)
		return func() {}
	}
	m.handles[h.id] = h
	gen := m.generation
	m.mu.Unlock()

	go m.run(h, gen, route)

	return func() { m.cancel(h) }
}

func (m *Manager) run(h *handle, gen uint64, route func([]byte)) {
	ctx := m.baseCtx
	if err := m.Initialize(ctx); err != nil {
		m.logger.Warn("Subscription dropped, stream not initialized", "topic", h.topic.Key, "error", err)
		m.forget(h)
		return
	}

	m.mu.Lock()
	client := m.client
	stale := m.generation != gen || client == nil
	m.mu.Unlock()
	if stale || h.isCancelled() {
		m.forget(h)
		return
	}

	sub, err := client.Subscribe(ctx, h.topic,
		func(data []byte) {
			if h.isCancelled() {
				return
			}
			route(data)
		},
		func(err error) {
			m.logger.Warn("Stream subscription error", "topic", h.topic.Key, "error", err)
		},
	)
	if err != nil {
		m.logger.Warn("Failed to subscribe", "topic", h.topic.Key, "error", err)
		m.forget(h)
		return
	}

	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		m.logger.Debug("Subscription cancelled before it resolved, unsubscribing", "topic", h.topic.Key, "subscription", sub.ID())
		if err := sub.Unsubscribe(); err != nil {
			m.logger.Debug("Late unsubscribe failed", "topic", h.topic.Key, "error", err)
		}
		return
	}
	h.sub = sub
	h.mu.Unlock()

	metrics.ActiveSubscriptions.Inc()
	m.logger.Debug("Subscribed", "topic", h.topic.Key, "subscription", sub.ID())
}

func (m *Manager) forget(h *handle) {
	m.mu.Lock()
	delete(m.handles, h.id)
	m.mu.Unlock()
}

func (m *Manager) cancel(h *handle) {
	sub, ok := h.markCancelled()
	if !ok {
		return
	}
	m.forget(h)
	if sub == nil {
		return
	}
	metrics.ActiveSubscriptions.Dec()
	if err := sub.Unsubscribe(); err != nil {
		m.logger.Warn("Failed to unsubscribe", "topic", h.topic.Key, "error", err)
	}
}

// Disconnect unsubscribes every live topic, closes the client and returns to Uninitialized.
// A failing unsubscribe never prevents the others; all failures are joined into the result.
func (m *Manager) Disconnect() error {
	return m.teardown(entity.StateUninitialized)
}

// Close disconnects and moves the manager to the terminal Closed state.
func (m *Manager) Close() error {
	err := m.teardown(entity.StateClosed)
	m.cancelBase()
	return err
}

func (m *Manager) teardown(next entity.ConnectionState) error {
	m.mu.Lock()
	handles := make([]*handle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.handles = make(map[string]*handle)
	client := m.client
	m.client = nil
	m.generation++
	notify := func() {}
	if m.state != entity.StateClosed {
		notify = m.setStateLocked(next)
	}
	m.mu.Unlock()

	var errs []error
	for _, h := range handles {
		sub, ok := h.markCancelled()
		if !ok || sub == nil {
			continue
		}
		metrics.ActiveSubscriptions.Dec()
		if err := sub.Unsubscribe(); err != nil {
			m.logger.Warn("Failed to unsubscribe during disconnect", "topic", h.topic.Key, "error", err)
			errs = append(errs, fmt.Errorf("failed to unsubscribe %s: %w", h.topic.Key, err))
		}
	}
	if client != nil {
		client.Close()
	}
	notify()
	return errors.Join(errs...)
}
