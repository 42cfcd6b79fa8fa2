package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-directory/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisUserCache_Set_Success(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	user := &domain.User{ID: 1, Name: "Alice", Email: "alice@example.com"}

	require.NoError(t, cache.Set(context.Background(), user))

	data, err := client.Get(context.Background(), Key(1)).Bytes()
	require.NoError(t, err)

	var cached domain.User
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, *user, cached)
	assert.Equal(t, 5*time.Minute, mr.TTL(Key(1)))
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cache nil user")
}

func TestRedisUserCache_Get_Hit(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	user := &domain.User{ID: 2, Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, cache.Set(context.Background(), user))

	got, err := cache.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestRedisUserCache_Get_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	got, err := cache.Get(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Get_Expired(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Second, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), &domain.User{ID: 3, Name: "Carol", Email: "carol@example.com"}))
	mr.FastForward(2 * time.Second)

	got, err := cache.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Get_CorruptedData(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set(Key(4), "{not json"))

	got, err := cache.Get(context.Background(), 4)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestRedisUserCache_Get_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	mr.Close()

	got, err := cache.Get(context.Background(), 1)
	assert.Nil(t, got)
	assert.Error(t, err)
}
