package logstream

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds connection and shipping parameters for the Redis log
// stream. All fields are populated from environment variables for
// deployment convenience.
type Config struct {
	// Redis connection URL (redis:// or rediss:// for TLS).
	URL string `env:"LOGSTREAM_REDIS_URL"`

	// Key of the list the events are pushed onto.
	Key string `env:"LOGSTREAM_KEY" envDefault:"logs"`

	// MaxLen caps the list; older entries are trimmed away. The stream
	// is a live tail, not a queue, so loss past the cap is expected.
	MaxLen int64 `env:"LOGSTREAM_MAX_LEN" envDefault:"10000"`

	// Pool sizing. Shipping log lines is a single-writer concern, so
	// the pool stays far below application defaults.
	PoolSize     int `env:"LOGSTREAM_POOL_SIZE" envDefault:"4"`
	MinIdleConns int `env:"LOGSTREAM_MIN_IDLE_CONNS" envDefault:"1"`

	// Operation timeouts.
	DialTimeout  time.Duration `env:"LOGSTREAM_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"LOGSTREAM_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"LOGSTREAM_WRITE_TIMEOUT" envDefault:"3s"`

	// Retry configuration for transient network issues during startup.
	RetryAttempts int           `env:"LOGSTREAM_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"LOGSTREAM_RETRY_INTERVAL" envDefault:"5s"`
}

// Connect dials Redis with retry logic. Each retry waits progressively
// longer so a server still booting is not hammered.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}

	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		client := redis.NewClient(opts)

		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}

		_ = client.Close()

		if waitErr := wait(ctx, time.Duration(i+1)*cfg.RetryInterval); waitErr != nil {
			return nil, errors.Join(ErrConnectionFailed, waitErr)
		}
	}

	return nil, ErrConnectionFailed
}

// Healthcheck returns a closure that validates connectivity for health
// endpoints.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
