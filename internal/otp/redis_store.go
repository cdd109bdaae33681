package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "otp:v1:"

// RedisStore keeps code hashes in Redis with a TTL so expiry needs no sweeper.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Save(ctx context.Context, mobile string, hash []byte, ttl time.Duration) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisPrefix+mobile, hash, ttl)
		p.Del(ctx, redisPrefix+"miss:"+mobile)
		return nil
	})
	return err
}

func (r *RedisStore) Load(ctx context.Context, mobile string) ([]byte, error) {
	hash, err := r.client.Get(ctx, redisPrefix+mobile).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return hash, err
}

func (r *RedisStore) Fail(ctx context.Context, mobile string) (int, error) {
	key := redisPrefix + "miss:" + mobile
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		ttl, err := r.client.PTTL(ctx, redisPrefix+mobile).Result()
		if err == nil && ttl > 0 {
			r.client.PExpire(ctx, key, ttl)
		}
	}
	return int(n), nil
}

func (r *RedisStore) Delete(ctx context.Context, mobile string) error {
	return r.client.Del(ctx, redisPrefix+mobile, redisPrefix+"miss:"+mobile).Err()
}
