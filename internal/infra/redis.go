package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis URL, honouring the database number in
// its path, and pings it within the connect timeout.
func NewRedisClient(ctx context.Context, url string, opts ...Option) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	o := buildOptions(opts)

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.DialTimeout = o.connectTimeout
	if o.maxConns > 0 {
		opt.PoolSize = int(o.maxConns)
	}
	if o.appName != "" {
		opt.ClientName = o.appName
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis db %d: %w", opt.DB, err)
	}
	return client, nil
}
