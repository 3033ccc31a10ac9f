package settings

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRedisStore creates a RedisStore backed by miniredis
func setupTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisStore(client), mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestRedisStore_GetMissing(t *testing.T) {
	store, _, cleanup := setupTestRedisStore(t)
	defer cleanup()

	_, err := store.Get(context.Background(), OptionKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_UpdateAndGet(t *testing.T) {
	store, mr, cleanup := setupTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, OptionKey, []byte(`{"client_id":"abc"}`)))

	got, err := store.Get(ctx, OptionKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"client_id":"abc"}`, string(got))

	raw, err := mr.Get(redisKeyPrefix + OptionKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"client_id":"abc"}`, raw)
	assert.Zero(t, mr.TTL(redisKeyPrefix+OptionKey))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr, cleanup := setupTestRedisStore(t)
	defer cleanup()
	mr.Close()

	_, err := store.Get(context.Background(), OptionKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRepository_WithRedisStore(t *testing.T) {
	store, _, cleanup := setupTestRedisStore(t)
	defer cleanup()
	repo := NewRepository(store, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, Settings{ClientID: "abc", AccessToken: "tok", Status: true}))

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ClientID)
	assert.Equal(t, "tok", s.AccessToken)
	assert.True(t, s.Status)
}

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cfg := &config.Config{SettingsBackend: config.BackendRedis, RedisAddr: mr.Addr()}
	store, closeStore, err := OpenStore(ctx, cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &RedisStore{}, store)

	cfg = &config.Config{SettingsBackend: config.BackendMemory}
	store, _, err = OpenStore(ctx, cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	cfg = &config.Config{SettingsBackend: config.BackendPostgres}
	_, _, err = OpenStore(ctx, cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
