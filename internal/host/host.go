// Package host assembles the process-wide Service used by the shared
// library and the CLI from environment configuration.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/mtbridge"
	"github.com/ZaguanLabs/mtbridge/cache"
	"github.com/ZaguanLabs/mtbridge/engine"
	"github.com/ZaguanLabs/mtbridge/internal/config"
	"github.com/ZaguanLabs/mtbridge/internal/logging"
	"github.com/ZaguanLabs/mtbridge/langdetect"
)

// Host owns a Service and the resources built for it.
type Host struct {
	Service *mtbridge.Service
	Logger  zerolog.Logger

	redis *cache.RedisCache
}

// New builds a Host from cfg. Nothing touches the network except a Redis
// ping when the redis result cache is selected.
func New(cfg *config.Config, logger zerolog.Logger) (*Host, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	detector, err := langdetect.New(langdetect.Config{Languages: cfg.DetectorLanguageList()})
	if err != nil {
		return nil, fmt.Errorf("build language detector: %w", err)
	}

	h := &Host{Logger: logger}

	opts := []mtbridge.ServiceOption{
		mtbridge.WithDetector(detector),
		mtbridge.WithLogger(logger),
		mtbridge.WithTeardownPolicy(cfg.TeardownPolicy()),
		mtbridge.WithConfigValidation(cfg.ValidateConfig),
	}

	switch cfg.ResultCacheKind() {
	case "none":
		opts = append(opts, mtbridge.WithResultCacheSize(0))
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			URL: cfg.RedisURL,
			TTL: cfg.ResultCacheTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("connect result cache: %w", err)
		}
		h.redis = rc
		opts = append(opts, mtbridge.WithResultCache(rc))
	default:
		if cfg.ResultCacheTTL > 0 && cfg.ResultCacheSize > 0 {
			opts = append(opts, mtbridge.WithResultCache(cache.NewInMemoryCache(cfg.ResultCacheSize, cfg.ResultCacheTTL)))
		} else {
			opts = append(opts, mtbridge.WithResultCacheSize(cfg.ResultCacheSize))
		}
	}

	h.Service = mtbridge.NewService(backend, opts...)

	logger.Debug().
		Str("engine", cfg.EngineName()).
		Str("result_cache", cfg.ResultCacheKind()).
		Str("teardown", cfg.TeardownPolicy().String()).
		Msg("service configured")

	return h, nil
}

func newBackend(cfg *config.Config) (mtbridge.TranslationEngine, error) {
	var backend mtbridge.TranslationEngine
	switch cfg.EngineName() {
	case "mock":
		backend = engine.NewMockEngine()
	case "openai":
		backend = engine.NewOpenAIEngine(engine.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Temperature: cfg.OpenAITemperature,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}

	// Rate limiting sits inside retry so every attempt takes a token.
	if cfg.EngineRPM > 0 {
		backend = mtbridge.NewRateLimitedEngine(backend, mtbridge.RateLimitConfig{
			RequestsPerMinute: cfg.EngineRPM,
		})
	}
	if cfg.EngineMaxRetries > 0 {
		retry := mtbridge.DefaultRetryConfig()
		retry.MaxRetries = cfg.EngineMaxRetries
		backend = mtbridge.NewRetryableEngine(backend, retry)
	}
	return backend, nil
}

// ErrNoSharedCache is returned by PurgeResultCache when results are not kept
// in Redis.
var ErrNoSharedCache = errors.New("result cache is not shared; nothing to purge")

// PurgeResultCache deletes every shared result entry and reports how many
// keys were removed. In-process caches are dropped by Service.Reset instead.
func (h *Host) PurgeResultCache(ctx context.Context) (int64, error) {
	if h.redis == nil {
		return 0, ErrNoSharedCache
	}
	return h.redis.Purge(ctx)
}

// Close resets the service and releases the Redis connection, if any.
func (h *Host) Close() error {
	err := h.Service.Reset()
	if h.redis != nil {
		if cerr := h.redis.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

var (
	defaultOnce sync.Once
	defaultHost atomic.Pointer[Host]
	defaultErr  error
)

// Default returns the process-wide Host, built from the environment on the
// first call. A failed build is remembered and returned on every call.
func Default() (*Host, error) {
	defaultOnce.Do(func() {
		h, err := fromEnv()
		if err != nil {
			defaultErr = err
			return
		}
		defaultHost.Store(h)
	})
	return defaultHost.Load(), defaultErr
}

// Current returns the process-wide Host if Default has built one, without
// building it.
func Current() (*Host, bool) {
	h := defaultHost.Load()
	return h, h != nil
}

func fromEnv() (*Host, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	return New(cfg, logger)
}
