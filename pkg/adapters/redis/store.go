// Package redis provides a Redis-backed snapshot store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/sawane/shiori/pkg/state"
)

// Store implements ports.SnapshotStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for saves.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for saves.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "shiori:save:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(slot string) string {
	return s.prefix + slot
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the snapshot to Redis. The slot is also tracked in a
// ZSET index scored by expiration time so List stays cheap.
func (s *Store) Save(ctx context.Context, slot string, snap *state.Snapshot) error {
	if slot == "" {
		return fmt.Errorf("slot cannot be empty")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(slot), data, s.ttl)

	// Score = Now + TTL. A zero TTL never expires, so the score is
	// pushed past any realistic prune horizon.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: slot,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the snapshot from Redis.
func (s *Store) Load(ctx context.Context, slot string) (*state.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(slot)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, state.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete removes the slot and its index entry.
func (s *Store) Delete(ctx context.Context, slot string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(slot))
	pipe.ZRem(ctx, s.indexKey(), slot)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns saved slots. Entries whose TTL has passed are pruned
// from the index lazily before the read.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired saves: %w", err)
	}

	slots, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	return slots, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
