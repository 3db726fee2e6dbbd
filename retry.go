package mtbridge

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retrying engine invocations.
type RetryConfig struct {
	MaxRetries int           // Additional attempts after the first
	BaseDelay  time.Duration // Delay before the first retry, doubled each time
	MaxDelay   time.Duration // Upper bound on a single delay
}

// DefaultRetryConfig returns the backoff used when retries are enabled
// without explicit delays.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
	}
}

func (c RetryConfig) delay(attempt int) time.Duration {
	d := c.BaseDelay << attempt
	if d <= 0 || (c.MaxDelay > 0 && d > c.MaxDelay) {
		return c.MaxDelay
	}
	return d
}

// WithRetry runs fn until it succeeds, returns a non-retryable error, or
// runs out of attempts. The last error is returned unchanged.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(cfg.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err is an engine failure marked retryable.
// Cancellation and deadline errors never are.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var invErr *EngineInvocationError
	if errors.As(err, &invErr) {
		return invErr.Retryable
	}
	return false
}

// RetryableEngine retries failed Translate calls on the wrapped engine.
// Model construction is not retried.
type RetryableEngine struct {
	engine TranslationEngine
	config RetryConfig
}

// NewRetryableEngine wraps engine with retry logic.
func NewRetryableEngine(engine TranslationEngine, cfg RetryConfig) *RetryableEngine {
	return &RetryableEngine{engine: engine, config: cfg}
}

// CreateModel delegates to the wrapped engine.
func (e *RetryableEngine) CreateModel(ctx context.Context, cfg *ModelConfig) (Model, error) {
	return e.engine.CreateModel(ctx, cfg)
}

// Translate implements TranslationEngine with retry logic.
func (e *RetryableEngine) Translate(ctx context.Context, models []Model, texts []string, opts []ResponseOptions) ([]Response, error) {
	return WithRetry(ctx, e.config, func() ([]Response, error) {
		return e.engine.Translate(ctx, models, texts, opts)
	})
}

var _ TranslationEngine = (*RetryableEngine)(nil)
