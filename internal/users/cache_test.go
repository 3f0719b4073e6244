package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, 15*time.Minute), mr
}

func TestCacheFetchPopulatesAndServes(t *testing.T) {
	cache, mr := newTestCache(t)

	loads := 0
	loader := func(ctx context.Context) (*User, error) {
		loads++
		return &User{ID: 7, Email: "alice@example.com", FullName: "Alice", Role: RoleUser}, nil
	}

	first, err := cache.Fetch(context.Background(), "alice@example.com", loader)
	require.NoError(t, err)
	require.Equal(t, int64(7), first.ID)
	require.Equal(t, 1, loads)
	require.True(t, mr.Exists("user:alice@example.com"))

	second, err := cache.Fetch(context.Background(), "alice@example.com", loader)
	require.NoError(t, err)
	require.Equal(t, first.Email, second.Email)
	require.Equal(t, 1, loads)
}

func TestCacheFetchLoaderError(t *testing.T) {
	cache, _ := newTestCache(t)

	wantErr := errors.New("db down")
	_, err := cache.Fetch(context.Background(), "alice@example.com", func(ctx context.Context) (*User, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestCacheFetchDropsCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("user:alice@example.com", "{not json"))

	user, err := cache.Fetch(context.Background(), "alice@example.com", func(ctx context.Context) (*User, error) {
		return &User{ID: 3, Email: "alice@example.com"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), user.ID)

	// The corrupt payload was replaced with a valid one.
	raw, err := mr.Get("user:alice@example.com")
	require.NoError(t, err)
	require.Contains(t, raw, `"alice@example.com"`)
}

func TestCacheInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)

	loads := 0
	loader := func(ctx context.Context) (*User, error) {
		loads++
		return &User{ID: 1, Email: "alice@example.com"}, nil
	}

	_, err := cache.Fetch(context.Background(), "alice@example.com", loader)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(context.Background(), "alice@example.com"))
	require.False(t, mr.Exists("user:alice@example.com"))

	_, err = cache.Fetch(context.Background(), "alice@example.com", loader)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestCacheNilClientFallsThrough(t *testing.T) {
	var cache *Cache

	user, err := cache.Fetch(context.Background(), "alice@example.com", func(ctx context.Context) (*User, error) {
		return &User{ID: 9}, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(9), user.ID)
	require.NoError(t, cache.Invalidate(context.Background(), "alice@example.com"))
}
