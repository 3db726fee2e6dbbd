package mtbridge

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiting engine requests.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate (default: 60)
	BurstSize         int // Bucket size (default: RequestsPerMinute)
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token if one is available.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token, or reports how long until one accrues.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}

	missing := 1 - r.tokens
	return time.Duration(missing / r.refillRate * float64(time.Second)), false
}

// refill must be called with r.mu held.
func (r *RateLimiter) refill() {
	now := time.Now()
	r.tokens += now.Sub(r.lastRefill).Seconds() * r.refillRate
	r.lastRefill = now
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedEngine throttles Translate calls on the wrapped engine.
type RateLimitedEngine struct {
	engine  TranslationEngine
	limiter *RateLimiter
}

// NewRateLimitedEngine wraps engine with a token bucket.
func NewRateLimitedEngine(engine TranslationEngine, cfg RateLimitConfig) *RateLimitedEngine {
	return &RateLimitedEngine{
		engine:  engine,
		limiter: NewRateLimiter(cfg),
	}
}

// CreateModel delegates to the wrapped engine without consuming a token.
func (e *RateLimitedEngine) CreateModel(ctx context.Context, cfg *ModelConfig) (Model, error) {
	return e.engine.CreateModel(ctx, cfg)
}

// Translate waits for a token and then delegates.
func (e *RateLimitedEngine) Translate(ctx context.Context, models []Model, texts []string, opts []ResponseOptions) ([]Response, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, &EngineInvocationError{Op: "rate limit", Cause: err}
	}
	return e.engine.Translate(ctx, models, texts, opts)
}

// Limiter returns the underlying rate limiter for inspection.
func (e *RateLimitedEngine) Limiter() *RateLimiter {
	return e.limiter
}

var _ TranslationEngine = (*RateLimitedEngine)(nil)
