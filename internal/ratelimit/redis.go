package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a limiter shared across instances: INCR + EXPIRE per window key.
type Redis struct {
	rdb    *redis.Client
	window time.Duration
	limit  int
	prefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedis(cfg RedisConfig, limit int, window time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Redis{
		rdb:    rdb,
		window: window,
		limit:  limit,
		prefix: "ratelimit:",
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := r.prefix + key

	count, err := r.rdb.Incr(ctx, k).Result()

	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		// first hit opens the window
		err = r.rdb.Expire(ctx, k, r.window).Err()

		if err != nil {
			return false, 0, err
		}
	}

	if count > int64(r.limit) {
		ttl, err := r.rdb.TTL(ctx, k).Result()

		if err != nil || ttl < 0 {
			ttl = r.window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
