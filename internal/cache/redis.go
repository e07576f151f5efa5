package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/muzz-social/internal/config"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	Client   *redis.Client
	scoreTTL time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	ttl := cfg.Redis.ScoreTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{Client: redis.NewClient(opts), scoreTTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForScore generates Redis key for a user's reputation score
func (c *RedisCache) KeyForScore(userID uint64) string {
	return fmt.Sprintf("reputation:score:%d", userID)
}

// SetScore stores the freshly recomputed score. Always refreshes TTL.
func (c *RedisCache) SetScore(ctx context.Context, userID uint64, score int64) error {
	return c.Client.Set(ctx, c.KeyForScore(userID), score, c.scoreTTL).Err()
}

// GetScore returns ErrMiss when the score is not cached.
func (c *RedisCache) GetScore(ctx context.Context, userID uint64) (int64, error) {
	key := c.KeyForScore(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	} else if err != nil {
		return 0, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, c.scoreTTL).Err()
	return strconv.ParseInt(val, 10, 64)
}

// DelScore drops the cached score.
func (c *RedisCache) DelScore(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForScore(userID)).Err()
}
