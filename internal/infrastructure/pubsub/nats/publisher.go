// Package nats publishes wallet state change events to a NATS broker.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"

	"stream_insight/internal/app/port"
	"stream_insight/internal/infrastructure/configloader"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher implements port.EventPublisher.
type Publisher struct {
	nc     *nats.Conn
	prefix string
	log    port.Logger
}

var _ port.EventPublisher = (*Publisher)(nil)

// New connects to cfg.URL. Reconnects are retried forever.
func New(log port.Logger, cfg *configloader.NATSConfig) (*Publisher, error) {
	if cfg == nil {
		return nil, errors.New("nats config is required")
	}
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}

	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.Timeout(5 * time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Connected to NATS", "url", cfg.URL, "prefix", cfg.SubjectPrefix)
	return &Publisher{nc: nc, prefix: cfg.SubjectPrefix, log: log}, nil
}

// Subject returns the full subject for a relative one.
func (p *Publisher) Subject(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "." + subject
}

// Publish encodes data as JSON and publishes it under the prefixed subject.
func (p *Publisher) Publish(ctx context.Context, subject string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.nc == nil {
		return errors.New("nats connection is not established")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode event for %s: %w", subject, err)
	}
	if err := p.nc.Publish(p.Subject(subject), payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.Subject(subject), err)
	}
	return nil
}

// Ready reports whether the connection is up.
func (p *Publisher) Ready() bool {
	return p.nc != nil && p.nc.Status() == nats.CONNECTED
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	if p.nc == nil || p.nc.Status() == nats.CLOSED {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Error("Failed to drain connection to NATS", "error", err)
		p.nc.Close()
		return fmt.Errorf("failed to drain connection to NATS: %w", err)
	}
	p.log.Info("NATS connection drained")
	return nil
}
