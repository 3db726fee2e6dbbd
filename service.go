package mtbridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/mtbridge/cache"
)

// Service is the translation façade: a lazily created engine, a keyed model
// cache, and a language detector behind one lifecycle.
//
// Three locks order the work. loadMu serializes model loads and Reset. mu
// guards the engine slot and the model cache and is only held briefly.
// invokeMu serializes engine invocations, which are not reentrant; it is
// never held while acquiring mu.
type Service struct {
	backend        TranslationEngine
	detector       LanguageDetector
	resultCache    TranslationCache
	noResultCache  bool
	cacheSize      int
	teardown       TeardownPolicy
	validateConfig bool
	logger         zerolog.Logger

	loadMu   sync.Mutex
	mu       sync.RWMutex
	invokeMu sync.Mutex

	engine  atomic.Pointer[Engine]
	models  map[string]*modelHandle
	retired []*Engine
}

// ServiceOption is a functional option for configuring the Service.
type ServiceOption func(*Service)

// WithDetector sets the language detector used by Detect.
func WithDetector(d LanguageDetector) ServiceOption {
	return func(s *Service) {
		s.detector = d
	}
}

// WithLogger sets the service logger. The default discards everything.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithResultCache replaces the per-engine in-memory result cache with c.
// The same cache is reused across engine resets; it is cleared on
// deterministic teardown if it supports Clear.
func WithResultCache(c TranslationCache) ServiceOption {
	return func(s *Service) {
		s.resultCache = c
	}
}

// WithResultCacheSize sets the capacity of the default in-memory result cache.
// Zero or negative disables result caching.
func WithResultCacheSize(n int) ServiceOption {
	return func(s *Service) {
		s.cacheSize = n
		s.noResultCache = n <= 0
	}
}

// WithTeardownPolicy overrides the platform's default teardown policy.
func WithTeardownPolicy(p TeardownPolicy) ServiceOption {
	return func(s *Service) {
		s.teardown = p
	}
}

// WithConfigValidation toggles JSON Schema validation of model configs.
func WithConfigValidation(enabled bool) ServiceOption {
	return func(s *Service) {
		s.validateConfig = enabled
	}
}

// NewService creates a Service around the given translation engine.
// No engine handle exists until the first Initialize, LoadModel or
// translation call.
func NewService(backend TranslationEngine, opts ...ServiceOption) *Service {
	s := &Service{
		backend:        backend,
		cacheSize:      DefaultResultCacheSize,
		teardown:       defaultTeardownPolicy,
		validateConfig: true,
		logger:         zerolog.Nop(),
		models:         make(map[string]*modelHandle),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TeardownPolicy returns the policy Reset applies.
func (s *Service) TeardownPolicy() TeardownPolicy {
	return s.teardown
}

func (s *Service) newResultCache() TranslationCache {
	if s.resultCache != nil {
		return s.resultCache
	}
	if s.noResultCache {
		return nil
	}
	return cache.NewInMemoryCache(s.cacheSize, 0)
}

// Translate translates every input with the model stored under key.
// The result has one entry per input, in order. An empty batch returns an
// empty result without touching the engine.
func (s *Service) Translate(ctx context.Context, inputs []string, key string) ([]string, error) {
	if key == "" {
		return nil, &InvalidArgumentError{Name: "key", Message: "must not be empty"}
	}

	e, err := s.Initialize()
	if err != nil {
		return nil, err
	}

	h, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	defer s.releaseHandle(h)

	return s.invoke(ctx, e, "translate", inputs, h)
}

// Pivot translates every input through firstKey and then secondKey in a
// single engine call. Only the final text is returned.
func (s *Service) Pivot(ctx context.Context, inputs []string, firstKey, secondKey string) ([]string, error) {
	if firstKey == "" {
		return nil, &InvalidArgumentError{Name: "first_key", Message: "must not be empty"}
	}
	if secondKey == "" {
		return nil, &InvalidArgumentError{Name: "second_key", Message: "must not be empty"}
	}

	e, err := s.Initialize()
	if err != nil {
		return nil, err
	}

	first, err := s.resolve(firstKey)
	if err != nil {
		return nil, err
	}
	defer s.releaseHandle(first)

	second, err := s.resolve(secondKey)
	if err != nil {
		return nil, err
	}
	defer s.releaseHandle(second)

	return s.invoke(ctx, e, "pivot", inputs, first, second)
}

func (s *Service) invoke(ctx context.Context, e *Engine, op string, inputs []string, handles ...*modelHandle) ([]string, error) {
	if len(inputs) == 0 {
		return []string{}, nil
	}

	opts := make([]ResponseOptions, len(inputs))
	for i := range opts {
		opts[i] = PlainText()
	}

	s.invokeMu.Lock()
	out, err := e.translate(ctx, handles, inputs, opts)
	s.invokeMu.Unlock()

	if err != nil {
		s.logger.Debug().Err(err).Str("op", op).Int("inputs", len(inputs)).Msg("engine invocation failed")
		return nil, wrapInvocation(op, err)
	}
	return out, nil
}

func wrapInvocation(op string, err error) error {
	var invErr *EngineInvocationError
	if errors.As(err, &invErr) {
		if invErr.Op == op {
			return invErr
		}
		return &EngineInvocationError{Op: op, Cause: err, Retryable: invErr.Retryable}
	}
	return &EngineInvocationError{Op: op, Cause: err}
}
