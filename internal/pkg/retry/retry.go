package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 1
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

// RetryConfig describes the retry policy of one outbound client.
// Attempts=1 disables retries.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"1"`
	Delay    time.Duration `env:"DELAY" envDefault:"200ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

func (rc *RetryConfig) ToRetryOptions(ctx context.Context, retryIf retry.RetryIfFunc) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	if retryIf != nil {
		opts = append(opts, retry.RetryIf(retryIf))
	}
	return opts
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Do runs fn under the policy, retrying only errors accepted by retryIf.
func Do(ctx context.Context, cfg *RetryConfig, retryIf retry.RetryIfFunc, fn func() error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return retry.Do(fn, cfg.ToRetryOptions(ctx, retryIf)...)
}
