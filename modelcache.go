package mtbridge

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync/atomic"
)

// modelHandle is a cache entry: the engine's model plus a reference count.
// The cache holds one reference; every in-flight call holds another.
type modelHandle struct {
	key         string
	fingerprint string
	model       Model
	refs        atomic.Int64
}

func newModelHandle(key string, cfg *ModelConfig, model Model) *modelHandle {
	h := &modelHandle{
		key:         key,
		fingerprint: cfg.Fingerprint,
		model:       model,
	}
	h.refs.Store(1)
	return h
}

func (h *modelHandle) acquire() {
	h.refs.Add(1)
}

// release drops one reference and closes the model when none remain.
func (h *modelHandle) release() error {
	if h.refs.Add(-1) != 0 {
		return nil
	}
	if closer, ok := h.model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// LoadModel parses blob and stores the resulting model under key.
//
// Loading an existing key is a no-op that succeeds without looking at blob.
// Loads are serialized: at most one model is constructed at a time, and the
// presence check and insert cannot interleave with another load.
func (s *Service) LoadModel(ctx context.Context, blob []byte, key string) error {
	if key == "" {
		return &InvalidArgumentError{Name: "key", Message: "must not be empty"}
	}

	e, err := s.Initialize()
	if err != nil {
		return err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.HasModel(key) {
		s.logger.Debug().Str("key", key).Msg("model already loaded")
		return nil
	}

	cfg, err := ParseModelConfig(blob, s.validateConfig)
	if err != nil {
		return &LoadError{Key: key, Cause: err}
	}

	model, err := e.createModel(ctx, cfg)
	if err != nil {
		return &LoadError{Key: key, Cause: err}
	}

	s.mu.Lock()
	s.models[key] = newModelHandle(key, cfg, model)
	s.mu.Unlock()

	s.logger.Debug().
		Str("key", key).
		Str("pair", cfg.PairName()).
		Str("fingerprint", cfg.Fingerprint[:12]).
		Msg("model loaded")
	return nil
}

// HasModel reports whether key is present in the model cache.
func (s *Service) HasModel(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.models[key]
	return ok
}

// Models returns the loaded keys in sorted order.
func (s *Service) Models() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.models))
	for key := range s.models {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// resolve returns the handle for key with an extra reference held.
// The caller must release it.
func (s *Service) resolve(key string) (*modelHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.models[key]
	if !ok {
		return nil, &ModelNotLoadedError{Key: key}
	}
	h.acquire()
	return h, nil
}

// dropModels releases the cache's reference on every model and empties the
// cache. Must be called with s.mu held.
func (s *Service) dropModels() error {
	var errs []error
	for key, h := range s.models {
		delete(s.models, key)
		if err := h.release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) releaseHandle(h *modelHandle) {
	if err := h.release(); err != nil {
		s.logger.Warn().Err(err).Str("key", h.key).Msg("closing model failed")
	}
}
