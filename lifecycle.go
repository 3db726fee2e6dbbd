package mtbridge

import (
	"fmt"
	"strings"
)

// TeardownPolicy selects what Reset does with the engine and the model cache.
type TeardownPolicy int

const (
	// TeardownDeterministic closes the engine and releases every cached
	// model during Reset.
	TeardownDeterministic TeardownPolicy = iota

	// TeardownDeferred detaches the engine without closing it and keeps the
	// model cache. Used where tearing down engine threads from a host
	// runtime's shutdown path is not safe.
	TeardownDeferred
)

// DefaultTeardownPolicy returns the platform's policy.
func DefaultTeardownPolicy() TeardownPolicy {
	return defaultTeardownPolicy
}

func (p TeardownPolicy) String() string {
	switch p {
	case TeardownDeterministic:
		return "deterministic"
	case TeardownDeferred:
		return "deferred"
	default:
		return fmt.Sprintf("TeardownPolicy(%d)", int(p))
	}
}

// ParseTeardownPolicy accepts "auto", "deterministic" or "deferred".
// "auto" and "" select the platform default.
func ParseTeardownPolicy(s string) (TeardownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return defaultTeardownPolicy, nil
	case "deterministic":
		return TeardownDeterministic, nil
	case "deferred":
		return TeardownDeferred, nil
	default:
		return 0, fmt.Errorf("unknown teardown policy %q", s)
	}
}

// Initialize creates the engine if it does not exist yet and returns it.
// It is safe to call from many goroutines; exactly one engine is created.
func (s *Service) Initialize() (*Engine, error) {
	if e := s.engine.Load(); e != nil {
		return e, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.engine.Load(); e != nil {
		return e, nil
	}
	if s.backend == nil {
		return nil, &InvalidArgumentError{Name: "engine", Message: "no translation engine configured"}
	}

	e := newEngine(s.backend, s.newResultCache())
	s.engine.Store(e)
	s.logger.Debug().Str("teardown", s.teardown.String()).Msg("engine initialized")
	return e, nil
}

// Initialized reports whether an engine currently exists.
func (s *Service) Initialized() bool {
	return s.engine.Load() != nil
}

// Reset detaches the engine so the next call creates a fresh one.
//
// Under TeardownDeterministic the engine is closed once any in-flight
// invocation finishes, and all cached models are released. Models still in
// use by an in-flight call are closed when that call lets go of them.
// Under TeardownDeferred the engine is parked and the model cache is kept.
func (s *Service) Reset() error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.engine.Swap(nil)

	if s.teardown == TeardownDeferred {
		if e != nil {
			s.retired = append(s.retired, e)
		}
		s.logger.Debug().Int("retired", len(s.retired)).Msg("engine detached, teardown deferred")
		return nil
	}

	if e != nil {
		s.invokeMu.Lock()
		e.close()
		s.invokeMu.Unlock()
	}

	n := len(s.models)
	err := s.dropModels()
	s.logger.Debug().Int("models", n).Msg("engine closed, models released")
	return err
}

// Retired returns the number of engines parked by deferred teardown.
func (s *Service) Retired() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.retired)
}
