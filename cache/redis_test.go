package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// setupTestRedis creates a miniredis server and a client pointing at it
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

type cachedCart struct {
	ID    uint     `json:"id"`
	Items []string `json:"items"`
}

func TestCartCache_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCartCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user123", cachedCart{ID: 4, Items: []string{"a"}}))
	assert.True(t, mr.Exists("cart:user123"))

	ttl := mr.TTL("cart:user123")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.LessOrEqual(t, ttl, time.Minute+15*time.Second)

	var got cachedCart
	require.NoError(t, cache.Get(ctx, "user123", &got))
	assert.Equal(t, uint(4), got.ID)
	assert.Equal(t, []string{"a"}, got.Items)
}

func TestCartCache_MissAndDelete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCartCache(client, time.Minute)
	ctx := context.Background()

	var got cachedCart
	assert.ErrorIs(t, cache.Get(ctx, "nobody", &got), ErrCacheMiss)

	mr.Set("cart:u1", `{"id":1}`)
	require.NoError(t, cache.Delete(ctx, "u1"))
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCartCache(client, time.Minute)
	mr.Set("cart:u1", "not-json")

	var got cachedCart
	err := cache.Get(context.Background(), "u1", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestCartCache_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewCartCache(client, time.Minute)
	mr.Close()

	var got cachedCart
	err := cache.Get(context.Background(), "u1", &got)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func newTestOTPStore(t *testing.T, ttl time.Duration, max int) (*OTPStore, *miniredis.Miniredis) {
	client, mr := setupTestRedis(t)
	store := NewOTPStore(client, ttl, max)
	store.cost = bcrypt.MinCost
	return store, mr
}

func TestOTPStore_VerifyConsumesCode(t *testing.T) {
	store, mr := newTestOTPStore(t, 5*time.Minute, 5)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "9876543210", "313204"))
	stored, err := mr.Get("otp:9876543210")
	require.NoError(t, err)
	assert.NotEqual(t, "313204", stored)

	require.NoError(t, store.Verify(ctx, "9876543210", "313204"))
	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "313204"), ErrOTPNotFound)
}

func TestOTPStore_Expires(t *testing.T) {
	store, mr := newTestOTPStore(t, 5*time.Minute, 5)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "9876543210", "111111"))
	mr.FastForward(5*time.Minute + time.Second)

	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "111111"), ErrOTPNotFound)
}

func TestOTPStore_Mismatch(t *testing.T) {
	store, _ := newTestOTPStore(t, time.Minute, 5)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "9876543210", "111111"))
	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "222222"), ErrOTPMismatch)
	assert.NoError(t, store.Verify(ctx, "9876543210", "111111"))
}

func TestOTPStore_AttemptLimit(t *testing.T) {
	store, mr := newTestOTPStore(t, time.Minute, 2)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "9876543210", "111111"))
	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "000000"), ErrOTPMismatch)
	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "000000"), ErrOTPMismatch)
	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "111111"), ErrOTPTooManyAttempts)
	assert.False(t, mr.Exists("otp:9876543210"))
}

func TestOTPStore_SaveResetsAttempts(t *testing.T) {
	store, _ := newTestOTPStore(t, time.Minute, 1)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "9876543210", "111111"))
	assert.ErrorIs(t, store.Verify(ctx, "9876543210", "000000"), ErrOTPMismatch)

	require.NoError(t, store.Save(ctx, "9876543210", "222222"))
	assert.NoError(t, store.Verify(ctx, "9876543210", "222222"))
}
