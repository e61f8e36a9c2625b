package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options for connecting to the Redis server backing the result cache.
type Options struct {
	Address  string
	Password string
	DB       int
}

// Store adapts a Redis client to the cache store port. Expiry is
// delegated to Redis item TTLs, so reads never see stale entries.
type Store struct {
	client *redis.Client
}

func New(opts Options) *Store {
	return &Store{client: redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// Ping tests connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get executes the redis Get command. Key not found converts to a
// plain miss, not an error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set executes the redis Set command with expiration. expiration <= 0
// means no caching.
func (s *Store) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	if expiration <= 0 {
		return nil
	}
	return s.client.Set(ctx, key, value, expiration).Err()
}

// Delete executes the redis Del command
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
