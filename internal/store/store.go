// Package store adapts the key/value and list primitives the core needs
// (spec §4.9) onto Redis via go-redis/v9. Values for windows are a
// length-prefixed binary frame (internal/timeseries), alert/config/action
// records are JSON. Callers write windows and alert/config/action records
// with a 7-day TTL; the message queue and the signal-name set are written
// with no TTL.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the 7-day retention spec §4.9/§6 assigns to signal, alert,
// config, and action records.
const DefaultTTL = 7 * 24 * time.Hour

// QueueKey is the single FIFO list the Message Queue Worker (C8) drains,
// populated at the head (LPUSH) and consumed at the tail (RPOP).
const QueueKey = "injest"

// SignalsSetKey is the set of known external signal names (spec §6).
const SignalsSetKey = "signals"

// Store wraps a Redis client with the get/set+ttl, list, and set operations
// the core consumes.
type Store struct {
	rdb    *redis.Client
	logger *log.Logger
}

// Config is the Redis connection configuration, sourced from REDIS_HOST /
// REDIS_PORT (spec §6).
type Config struct {
	Host string
	Port int
}

func New(cfg Config, logger *log.Logger) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	})
	return &Store{rdb: rdb, logger: logger}
}

// NewFromClient wraps an already-constructed client, used by tests against
// miniredis and by callers wiring custom Redis options.
func NewFromClient(rdb *redis.Client, logger *log.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Get returns the raw value for key, and ok=false if it does not exist.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes key=value with the given ttl (0 means no expiry).
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

// LPush pushes value onto the head of the list at key.
func (s *Store) LPush(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("store: lpush %s: %w", key, err)
	}
	return nil
}

// RPop pops a value from the tail of the list at key, ok=false if empty.
func (s *Store) RPop(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.RPop(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: rpop %s: %w", key, err)
	}
	return val, true, nil
}

// LLen returns the current length of the list at key.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("store: llen %s: %w", key, err)
	}
	return n, nil
}

// SAdd adds member to the set at key.
func (s *Store) SAdd(ctx context.Context, key string, member string) error {
	if err := s.rdb.SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("store: sadd %s: %w", key, err)
	}
	return nil
}

// SMembers returns every member of the set at key.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("store: smembers %s: %w", key, err)
	}
	return members, nil
}
