// Package streamclient implements the push-subscription transport on go-ethereum's rpc client.
// WebSocket connections use eth_subscribe; the HTTP fallback polls log filters.
package streamclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
)

// Dialer connects to the network's WebSocket endpoint, falling back to HTTP polling.
type Dialer struct {
	wsURL        string
	httpURL      string
	dialTimeout  time.Duration
	httpFallback bool
	pollInterval time.Duration
	bufferSize   int
	logger       port.Logger
}

var _ port.StreamDialer = (*Dialer)(nil)

// NewDialer derives both endpoints from def. A missing WebSocket URL is derived from the
// primary RPC URL and vice versa.
func NewDialer(def entity.NetworkDefinition, cfg configloader.StreamConfig, logger port.Logger) *Dialer {
	wsURL := def.WebSocketURL
	if wsURL == "" {
		wsURL = WebSocketURL(def.PrimaryRPCURL)
	}
	httpURL := def.PrimaryRPCURL
	if httpURL == "" {
		httpURL = HTTPURL(wsURL)
	}
	return &Dialer{
		wsURL:        wsURL,
		httpURL:      httpURL,
		dialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		httpFallback: cfg.HTTPFallback,
		pollInterval: time.Duration(cfg.PollIntervalMillis) * time.Millisecond,
		bufferSize:   cfg.BufferSize,
		logger:       logger,
	}
}

// WebSocketURL maps https to wss and http to ws. Other schemes are returned unchanged.
func WebSocketURL(rpcURL string) string {
	switch {
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://")
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://")
	}
	return rpcURL
}

// HTTPURL maps wss to https and ws to http. Other schemes are returned unchanged.
func HTTPURL(wsURL string) string {
	switch {
	case strings.HasPrefix(wsURL, "wss://"):
		return "https://" + strings.TrimPrefix(wsURL, "wss://")
	case strings.HasPrefix(wsURL, "ws://"):
		return "http://" + strings.TrimPrefix(wsURL, "ws://")
	}
	return wsURL
}

// Endpoint returns the WebSocket URL the dialer tries first.
func (d *Dialer) Endpoint() string { return d.wsURL }

// Dial implements port.StreamDialer.
func (d *Dialer) Dial(ctx context.Context) (port.StreamClient, error) {
	if d.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.dialTimeout)
		defer cancel()
	}

	rpcClient, err := rpc.DialContext(ctx, d.wsURL)
	if err == nil {
		d.logger.Info("Stream connected", "endpoint", d.wsURL, "transport", "websocket")
		return newClient(rpcClient, d.wsURL, true, d.pollInterval, d.bufferSize, d.logger), nil
	}
	if !d.httpFallback || d.httpURL == "" || d.httpURL == d.wsURL {
		return nil, fmt.Errorf("failed to dial %s: %w", d.wsURL, err)
	}

	d.logger.Warn("WebSocket dial failed, falling back to HTTP polling", "endpoint", d.wsURL, "fallback", d.httpURL, "error", err)
	rpcClient, httpErr := rpc.DialContext(ctx, d.httpURL)
	if httpErr != nil {
		return nil, fmt.Errorf("failed to dial %s (websocket: %v): %w", d.httpURL, err, httpErr)
	}
	d.logger.Info("Stream connected", "endpoint", d.httpURL, "transport", "http")
	return newClient(rpcClient, d.httpURL, false, d.pollInterval, d.bufferSize, d.logger), nil
}
