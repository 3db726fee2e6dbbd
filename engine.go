package mtbridge

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Engine is the process-wide translation engine handle: the collaborator
// engine plus the result cache that sits in front of it.
type Engine struct {
	backend TranslationEngine
	cache   TranslationCache
	logger  zerolog.Logger
	closed  atomic.Bool
}

func newEngine(backend TranslationEngine, cache TranslationCache) *Engine {
	return &Engine{
		backend: backend,
		cache:   cache,
		// Engine-side logging is suppressed; the service logs on its behalf.
		logger: zerolog.Nop(),
	}
}

// Stats reports the engine's result cache occupancy, or -1 when the cache
// cannot tell.
func (e *Engine) Stats() int {
	type lener interface{ Len() int }
	if l, ok := e.cache.(lener); ok {
		return l.Len()
	}
	return -1
}

// Closed reports whether the engine has been torn down.
func (e *Engine) Closed() bool {
	return e.closed.Load()
}

func (e *Engine) createModel(ctx context.Context, cfg *ModelConfig) (Model, error) {
	model, err := e.backend.CreateModel(ctx, cfg)
	if err != nil {
		if _, ok := err.(*ModelConstructionError); ok {
			return nil, err
		}
		return nil, &ModelConstructionError{Message: "engine rejected config", Cause: err}
	}
	if model == nil {
		return nil, &ModelConstructionError{Message: "engine returned no model"}
	}
	return model, nil
}

// translate runs texts through the model chain. Cached results are reused,
// repeated inputs are sent once, and the engine sees every distinct miss in
// a single call. Output order matches input order.
func (e *Engine) translate(ctx context.Context, handles []*modelHandle, texts []string, opts []ResponseOptions) ([]string, error) {
	models := make([]Model, len(handles))
	fingerprints := make([]string, len(handles))
	for i, h := range handles {
		models[i] = h.model
		fingerprints[i] = h.fingerprint
	}
	chain := ChainID(fingerprints...)

	results := make([]string, len(texts))
	resolved := make([]bool, len(texts))
	keys := make([]string, len(texts))

	// Check cache for each cacheable input
	if e.cache != nil {
		var lookupKeys []string
		var lookupIdx []int
		for i, text := range texts {
			if !cacheable(text, opts[i]) {
				continue
			}
			keys[i] = CacheKey(HashText(text), chain)
			lookupKeys = append(lookupKeys, keys[i])
			lookupIdx = append(lookupIdx, i)
		}
		values, found := lookupMany(e.cache, lookupKeys)
		for j, i := range lookupIdx {
			if found[j] {
				results[i] = values[j]
				resolved[i] = true
			}
		}
	}

	// Deduplicate cache misses
	type missKey struct {
		text string
		opts ResponseOptions
	}
	var missTexts []string
	var missOpts []ResponseOptions
	missPos := make(map[missKey]int)
	slot := make([]int, len(texts))
	for i, text := range texts {
		if resolved[i] {
			continue
		}
		k := missKey{text: text, opts: opts[i]}
		pos, seen := missPos[k]
		if !seen {
			pos = len(missTexts)
			missPos[k] = pos
			missTexts = append(missTexts, text)
			missOpts = append(missOpts, opts[i])
		}
		slot[i] = pos
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	responses, err := e.backend.Translate(ctx, models, missTexts, missOpts)
	if err != nil {
		return nil, err
	}
	if len(responses) != len(missTexts) {
		return nil, &CountMismatchError{Expected: len(missTexts), Got: len(responses)}
	}

	for i := range texts {
		if resolved[i] {
			continue
		}
		results[i] = responses[slot[i]].Target
	}

	if e.cache != nil {
		for pos, text := range missTexts {
			if !cacheable(text, missOpts[pos]) {
				continue
			}
			key := CacheKey(HashText(text), chain)
			if err := e.cache.Set(key, responses[pos].Target); err != nil {
				e.logger.Debug().Err(err).Msg("result cache write failed")
			}
		}
	}

	e.logger.Debug().
		Int("inputs", len(texts)).
		Int("sent", len(missTexts)).
		Msg("batch translated")
	return results, nil
}

// close purges the result cache and marks the engine as torn down.
func (e *Engine) close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if p, ok := e.cache.(Purger); ok {
		p.Clear()
	}
}

func cacheable(text string, opts ResponseOptions) bool {
	return text != "" && opts == PlainText()
}
