package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewCartCache(client *redis.Client, baseTTL time.Duration) *CartCache {
	return &CartCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

// CartCache holds rendered carts keyed by user. Every cart mutation deletes the entry.
type CartCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *CartCache) Get(ctx context.Context, userID string, dst any) error {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return nil
}

func (r *CartCache) Set(ctx context.Context, userID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL
	if ttl > 0 {
		ttl += time.Duration(rand.Int63n(int64(ttl)/4 + 1))
	}
	if err := r.client.Set(ctx, cartKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *CartCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
