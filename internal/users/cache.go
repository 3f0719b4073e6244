package users

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores serialized user records in Redis keyed by email. It sits in
// front of the repository on every authenticated request, so loads are
// deduplicated with singleflight.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(email string) string {
	return "user:" + email
}

// Fetch returns the cached user or populates the cache using the loader.
func (c *Cache) Fetch(ctx context.Context, email string, loader func(context.Context) (*User, error)) (*User, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	payload, err := c.client.Get(ctx, cacheKey(email)).Bytes()
	if err == nil {
		var user User
		if err := json.Unmarshal(payload, &user); err == nil {
			return &user, nil
		}
		// Corrupt entry: drop it and fall through to the loader.
		_ = c.client.Del(ctx, cacheKey(email)).Err()
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	value, err, _ := c.group.Do(email, func() (any, error) {
		user, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(user)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, cacheKey(email), raw, c.ttl).Err(); err != nil {
			return nil, err
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*User), nil
}

// Invalidate drops the cached record for the given email.
func (c *Cache) Invalidate(ctx context.Context, email string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, cacheKey(email)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
