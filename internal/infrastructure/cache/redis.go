package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cctncr/habitstreak/internal/domain/events"
	"github.com/cctncr/habitstreak/pkg/config"
	"github.com/go-redis/redis/v8"
)

// HabitEventsChannel is the pub/sub channel for habit events.
const HabitEventsChannel = "habitstreak:events:habits"

var (
	ErrCacheNotFound   = errors.New("cache: key not found")
	ErrCacheConnection = errors.New("cache: connection error")
)

// RedisClient wraps the redis connection used for response caching and
// habit event publishing.
type RedisClient struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &RedisClient{
		client:    client,
		keyPrefix: "habitstreak:",
		ttl:       30 * time.Minute,
	}, nil
}

func (r *RedisClient) key(k string) string {
	return r.keyPrefix + k
}

// Get reads a cached JSON value into dest.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set stores a JSON value under the default TTL.
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(key), data, r.ttl).Err()
}

// SetRaw stores pre-serialized bytes with an explicit TTL.
func (r *RedisClient) SetRaw(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), data, ttl).Err()
}

// GetRaw reads pre-serialized bytes.
func (r *RedisClient) GetRaw(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheNotFound
		}
		return nil, err
	}
	return data, nil
}

// InvalidatePattern deletes every key matching the pattern.
func (r *RedisClient) InvalidatePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, r.key(pattern), 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// PublishHabitEvent publishes a habit event for dashboard and
// cache-invalidation listeners.
func (r *RedisClient) PublishHabitEvent(ctx context.Context, event *events.HabitEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal habit event: %w", err)
	}
	return r.client.Publish(ctx, HabitEventsChannel, data).Err()
}

// SubscribeHabitEvents returns the raw pub/sub subscription for habit
// events. The caller owns closing it.
func (r *RedisClient) SubscribeHabitEvents(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, HabitEventsChannel)
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
