package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gratefultolord/community_bot/internal/db"
)

// Profiles is a read-through TTL cache in front of the profile store. It is
// never the source of truth: every method degrades to a miss on any redis
// failure, and write paths must call Invalidate or Set synchronously.
type Profiles struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewProfiles(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Profiles {
	return &Profiles{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func idKey(id int64) string {
	return "profile:id:" + strconv.FormatInt(id, 10)
}

func usernameKey(username string) string {
	return "profile:username:" + username
}

func (c *Profiles) GetByID(ctx context.Context, id int64) (*db.Profile, bool) {
	return c.get(ctx, idKey(id))
}

func (c *Profiles) GetByUsername(ctx context.Context, username string) (*db.Profile, bool) {
	return c.get(ctx, usernameKey(username))
}

func (c *Profiles) get(ctx context.Context, key string) (*db.Profile, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("profile cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var p db.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("profile cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return &p, true
}

func (c *Profiles) Set(ctx context.Context, p *db.Profile) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("profile cache marshal failed", zap.Int64("profile_id", p.ID), zap.Error(err))
		return
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, idKey(p.ID), raw, c.ttl)
	pipe.Set(ctx, usernameKey(p.Username), raw, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("profile cache write failed", zap.Int64("profile_id", p.ID), zap.Error(err))
	}
}

// Invalidate drops both key spaces for a record. Safe to call with a zero id
// or empty username when only one is known.
func (c *Profiles) Invalidate(ctx context.Context, id int64, username string) {
	keys := make([]string, 0, 2)
	if id != 0 {
		keys = append(keys, idKey(id))
	}
	if username != "" {
		keys = append(keys, usernameKey(username))
	}
	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("profile cache invalidation failed",
			zap.Int64("profile_id", id),
			zap.String("username", username),
			zap.Error(err))
	}
}

// WindowStore implements the sliding window counters used by the rate
// limiter on top of redis.
type WindowStore struct {
	client *redis.Client
}

func NewWindowStore(client *redis.Client) *WindowStore {
	return &WindowStore{client: client}
}

func (s *WindowStore) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("WindowStore.IncrementWindow: %w", err)
	}

	return incr.Val(), ttl.Val(), nil
}
