// Package redis stores the latest reconciled portfolio of each wallet.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"

	"stream_insight/internal/app/port"
	"stream_insight/internal/domain/entity"
	"stream_insight/internal/infrastructure/configloader"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SnapshotStore implements port.SnapshotStore. Keys are "<prefix>:snapshot:<address>".
type SnapshotStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

var _ port.SnapshotStore = (*SnapshotStore)(nil)

// New connects to cfg.Addr and verifies the connection with PING.
func New(ctx context.Context, cfg configloader.RedisConfig) (*SnapshotStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(rdb, cfg.KeyPrefix, time.Duration(cfg.SnapshotTTLMinutes)*time.Minute), nil
}

// NewWithClient wraps an existing client. A ttl of 0 keeps snapshots forever.
func NewWithClient(rdb *goredis.Client, prefix string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *SnapshotStore) key(walletAddress string) string {
	return s.prefix + ":snapshot:" + strings.ToLower(walletAddress)
}

// Save overwrites the stored snapshot of p.WalletAddress.
func (s *SnapshotStore) Save(ctx context.Context, p entity.WalletPortfolio) error {
	if p.WalletAddress == "" {
		return entity.ErrInvalidAddress
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(p.WalletAddress), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or nil when there is none.
func (s *SnapshotStore) Load(ctx context.Context, walletAddress string) (*entity.WalletPortfolio, error) {
	data, err := s.rdb.Get(ctx, s.key(walletAddress)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var p entity.WalletPortfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &p, nil
}

// Close closes the underlying client.
func (s *SnapshotStore) Close() error {
	return s.rdb.Close()
}
