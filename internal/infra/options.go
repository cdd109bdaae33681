package infra

import "time"

const defaultConnectTimeout = 5 * time.Second

// Option tunes the Postgres pool and Redis client built by this package.
type Option func(*options)

type options struct {
	connectTimeout time.Duration
	maxConns       int32
	appName        string
}

// WithConnectTimeout bounds dialing and the startup ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithMaxConns caps the connection pool. Zero keeps the driver default.
func WithMaxConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = int32(n)
		}
	}
}

// WithApplicationName tags connections so they can be told apart in
// pg_stat_activity and CLIENT LIST.
func WithApplicationName(name string) Option {
	return func(o *options) { o.appName = name }
}

func buildOptions(opts []Option) options {
	o := options{connectTimeout: defaultConnectTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
