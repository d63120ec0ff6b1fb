package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stockCharts/internal/ports"
)

const scanBatch = 200

// Store keeps cache entries as plain Redis strings under a key prefix.
type Store struct {
	client *redis.Client
	prefix string
	logger ports.Logger
}

// Config holds connection settings for the Redis store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // Prepended to every key, e.g. "charts:"
	Logger   ports.Logger
}

// NewStore connects to Redis and verifies the connection with PING.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for redis cache", ports.ErrConfigurationError)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	cfg.Logger.Info(ctx, "Redis cache connected", map[string]interface{}{"addr": cfg.Addr, "prefix": cfg.Prefix})
	return NewStoreWithClient(client, cfg.Prefix, cfg.Logger), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *redis.Client, prefix string, logger ports.Logger) *Store {
	return &Store{client: client, prefix: prefix, logger: logger}
}

func (s *Store) key(k string) string { return s.prefix + k }

// Get returns the entry for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores payload under key without expiry.
func (s *Store) Put(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// InvalidateAll deletes every key under the prefix. Keys outside the prefix are untouched.
func (s *Store) InvalidateAll(ctx context.Context) error {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
			removed += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	s.logger.Info(ctx, "Redis cache cleared", map[string]interface{}{"prefix": s.prefix, "entries": removed})
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ ports.CacheStore = (*Store)(nil)
