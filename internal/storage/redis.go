package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khanglvm/intent-rank/internal/config"
)

// RedisStorage implements Backend on a redis server. Keys are stored as
// "<prefix>:<key>" and expire after TTL when TTL is positive.
type RedisStorage struct {
	client  *redis.Client
	cfg     config.RedisConfig
	enabled bool
	mu      sync.RWMutex
}

// NewRedisStorage creates a redis backend. The connection is checked on Init.
func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &RedisStorage{cfg: cfg, enabled: true}
}

// NewRedisStorageFromClient wraps an existing client.
func NewRedisStorageFromClient(client *redis.Client, cfg config.RedisConfig) *RedisStorage {
	s := NewRedisStorage(cfg)
	s.client = client
	return s
}

// Init connects and pings the server.
func (s *RedisStorage) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		s.client = redis.NewClient(&redis.Options{
			Addr:         s.cfg.Addr,
			Password:     s.cfg.Password,
			DB:           s.cfg.DB,
			DialTimeout:  s.cfg.Timeout,
			ReadTimeout:  s.cfg.Timeout,
			WriteTimeout: s.cfg.Timeout,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		s.enabled = false
		return fmt.Errorf("redis ping failed: %w", err)
	}
	s.enabled = true
	return nil
}

// Enabled reports whether the last Init reached the server.
func (s *RedisStorage) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled && s.client != nil
}

// Name returns "redis".
func (s *RedisStorage) Name() string { return "redis" }

func (s *RedisStorage) key(k string) string {
	if s.cfg.KeyPrefix == "" {
		return k
	}
	return s.cfg.KeyPrefix + ":" + k
}

// Get reads the value stored under key.
func (s *RedisStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled || s.client == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, refreshing its TTL.
func (s *RedisStorage) Put(key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled || s.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(key), value, s.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStorage) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled || s.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
