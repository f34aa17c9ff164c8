package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/user-management/internal/domain"
)

const userKeyPrefix = "user:"

// ErrCacheMiss is returned when no entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// UserCache is a Redis read-through cache for user lookups by id. Entries
// are invalidated on every mutation, so a miss is the common path right
// after a write.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUserCache builds the cache around an existing Redis client.
func NewUserCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *UserCache {
	return &UserCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached user or ErrCacheMiss.
func (c *UserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}

	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		c.logger.Warn("user cache read failed", zap.Int64("id", id), zap.Error(err))
		return nil, ErrCacheMiss
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.logger.Warn("user cache entry corrupt", zap.Int64("id", id), zap.Error(err))
		return nil, ErrCacheMiss
	}
	return &user, nil
}

// Set stores the user with the configured TTL. Failures are logged, never
// surfaced: the store remains the source of truth.
func (c *UserCache) Set(ctx context.Context, user *domain.User) {
	if c == nil || c.client == nil || user == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		c.logger.Warn("user cache marshal failed", zap.Int64("id", user.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, userKey(user.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("user cache write failed", zap.Int64("id", user.ID), zap.Error(err))
	}
}

// Invalidate drops the entry for id.
func (c *UserCache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, userKey(id)).Err(); err != nil {
		c.logger.Warn("user cache invalidate failed", zap.Int64("id", id), zap.Error(err))
	}
}

func userKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}
