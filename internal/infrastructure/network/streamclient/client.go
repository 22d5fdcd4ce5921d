package streamclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBufferSize   = 128
	filterCallTimeout   = 10 * time.Second
)

var (
	streamJSON = jsoniter.ConfigCompatibleWithStandardLibrary

	errClientClosed = errors.New("stream client closed")
)

// envelope is the message shape handed to subscribers.
type envelope struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// logFilter is the eth_subscribe / eth_newFilter criteria built from a topic descriptor.
type logFilter struct {
	Address []string   `json:"address,omitempty"`
	Topics  [][]string `json:"topics,omitempty"`
}

func filterFor(topic entity.TopicDescriptor) logFilter {
	return logFilter{Address: topic.Addresses, Topics: topic.Topics}
}

// Client is a port.StreamClient over one rpc connection.
type Client struct {
	rpc           *rpc.Client
	endpoint      string
	notifications bool
	pollInterval  time.Duration
	bufferSize    int
	logger        port.Logger

	mu     sync.Mutex
	subs   map[string]*subscription
	closed bool
}

var _ port.StreamClient = (*Client)(nil)

func newClient(rpcClient *rpc.Client, endpoint string, notifications bool, pollInterval time.Duration, bufferSize int, logger port.Logger) *Client {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Client{
		rpc:           rpcClient,
		endpoint:      endpoint,
		notifications: notifications,
		pollInterval:  pollInterval,
		bufferSize:    bufferSize,
		logger:        logger,
		subs:          make(map[string]*subscription),
	}
}

type subscription struct {
	id      string
	topic   entity.TopicDescriptor
	client  *Client
	onData  func([]byte)
	onError func(error)
	done    chan struct{}

	mu   sync.Mutex
	last []byte

	once sync.Once
	stop func() error
	err  error
}

func (s *subscription) ID() string { return s.id }

// Unsubscribe stops delivery and releases the remote subscription. Repeated calls return
// the first result. It does not wait for the reader goroutine, so it may be called from onData.
func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.stop()
		s.client.remove(s.id)
	})
	return s.err
}

func (s *subscription) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) deliver(raw json.RawMessage) {
	if s.stopped() {
		return
	}
	data, err := streamJSON.Marshal(envelope{Subscription: s.id, Result: raw})
	if err != nil {
		s.onError(fmt.Errorf("failed to encode %s payload: %w", s.topic.Key, err))
		return
	}
	if s.topic.OnlyPushChanges {
		s.mu.Lock()
		same := bytes.Equal(s.last, data)
		if !same {
			s.last = data
		}
		s.mu.Unlock()
		if same {
			return
		}
	}
	s.onData(data)
}

// Subscribe implements port.StreamClient.
func (c *Client) Subscribe(ctx context.Context, topic entity.TopicDescriptor, onData func([]byte), onError func(error)) (port.StreamSubscription, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, errClientClosed
	}
	if onError == nil {
		onError = func(error) {}
	}

	s := &subscription{
		id:      uuid.NewString(),
		topic:   topic,
		client:  c,
		onData:  onData,
		onError: onError,
		done:    make(chan struct{}),
	}

	var err error
	if c.notifications {
		err = c.subscribeLogs(ctx, s)
	} else {
		err = c.pollLogs(ctx, s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic.Key, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = s.Unsubscribe()
		return nil, errClientClosed
	}
	c.subs[s.id] = s
	c.mu.Unlock()

	c.logger.Debug("Stream subscription opened", "context", topic.Context, "topic", topic.Key, "subscription", s.id)
	return s, nil
}

func (c *Client) subscribeLogs(ctx context.Context, s *subscription) error {
	ch := make(chan json.RawMessage, c.bufferSize)
	sub, err := c.rpc.EthSubscribe(ctx, ch, "logs", filterFor(s.topic))
	if err != nil {
		return err
	}
	s.stop = func() error {
		sub.Unsubscribe()
		return nil
	}

	go func() {
		for {
			select {
			case <-s.done:
				return
			case raw := <-ch:
				s.deliver(raw)
			case err := <-sub.Err():
				if err != nil && !s.stopped() {
					s.onError(err)
				}
				return
			}
		}
	}()
	return nil
}

func (c *Client) pollLogs(ctx context.Context, s *subscription) error {
	var filterID string
	if err := c.rpc.CallContext(ctx, &filterID, "eth_newFilter", filterFor(s.topic)); err != nil {
		return err
	}
	s.stop = func() error {
		ctx, cancel := context.WithTimeout(context.Background(), filterCallTimeout)
		defer cancel()
		var removed bool
		if err := c.rpc.CallContext(ctx, &removed, "eth_uninstallFilter", filterID); err != nil {
			return fmt.Errorf("failed to uninstall filter %s: %w", filterID, err)
		}
		return nil
	}

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}

			var logs []json.RawMessage
			ctx, cancel := context.WithTimeout(context.Background(), filterCallTimeout)
			err := c.rpc.CallContext(ctx, &logs, "eth_getFilterChanges", filterID)
			cancel()
			if err != nil {
				if s.stopped() {
					return
				}
				s.onError(fmt.Errorf("failed to poll filter %s: %w", filterID, err))
				continue
			}
			for _, raw := range logs {
				if s.stopped() {
					return
				}
				s.deliver(raw)
			}
		}
	}()
	return nil
}

func (c *Client) remove(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// Close unsubscribes everything and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := make([]*subscription, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil {
			c.logger.Debug("Unsubscribe on close failed", "topic", s.topic.Key, "error", err)
		}
	}
	c.rpc.Close()
	c.logger.Info("Stream closed", "endpoint", c.endpoint)
}
