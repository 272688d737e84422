// Package redis is the rueidis-backed key-value store behind the read-through
// query cache. Every command runs under a short timeout: a slow cache must
// never hold up a query that the database could answer.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/survivor-labs/survivor-indexer/internal/db"
)

// DefaultCommandTimeout bounds a single cache command.
const DefaultCommandTimeout = 250 * time.Millisecond

var (
	_ db.KVStore = (*Store)(nil)
	_ db.Pinger  = (*Store)(nil)
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs          []string
	Username       string
	Password       string
	DB             int
	CommandTimeout time.Duration // 0 means DefaultCommandTimeout
}

// Store is a Redis key-value store.
type Store struct {
	client  rueidis.Client
	timeout time.Duration
}

// NewStore connects to Redis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return newStore(client, cfg.CommandTimeout), nil
}

func newStore(c rueidis.Client, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Store{client: c, timeout: timeout}
}

// Get returns the value stored at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores value at key with millisecond expiry precision.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < time.Millisecond {
		return &db.Error{Op: db.OpSet, Err: fmt.Errorf("ttl %s below 1ms", ttl)}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value)).Px(ttl).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Ping checks connectivity. It uses the caller's deadline, not the command
// timeout, so readiness polling can wait for slow starts.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}
