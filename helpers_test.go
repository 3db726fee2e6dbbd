package mtbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

type stubModel struct {
	source string
	target string
	closed atomic.Int32
}

func (m *stubModel) SourceLanguage() string { return m.source }
func (m *stubModel) TargetLanguage() string { return m.target }

func (m *stubModel) Close() error {
	m.closed.Add(1)
	return nil
}

// stubEngine prefixes each text with "[target] " per model in the chain.
type stubEngine struct {
	mu           sync.Mutex
	created      []*stubModel
	calls        [][]string
	createErr    error
	translateErr error
	dropLast     bool
}

func (e *stubEngine) CreateModel(ctx context.Context, cfg *ModelConfig) (Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.createErr != nil {
		return nil, e.createErr
	}
	if cfg.TargetLanguage == "" {
		return nil, errors.New("target-language is required")
	}
	m := &stubModel{source: cfg.SourceLanguage, target: cfg.TargetLanguage}
	e.created = append(e.created, m)
	return m, nil
}

func (e *stubEngine) Translate(ctx context.Context, models []Model, texts []string, opts []ResponseOptions) ([]Response, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	e.mu.Unlock()

	if e.translateErr != nil {
		return nil, e.translateErr
	}

	out := make([]Response, 0, len(texts))
	for _, text := range texts {
		target := text
		for _, m := range models {
			if target != "" {
				target = fmt.Sprintf("[%s] %s", m.TargetLanguage(), target)
			}
		}
		out = append(out, Response{Source: text, Target: target})
	}
	if e.dropLast && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *stubEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *stubEngine) lastCall() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.calls) == 0 {
		return nil
	}
	return e.calls[len(e.calls)-1]
}

func (e *stubEngine) createCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.created)
}

func pairConfig(src, trg string) []byte {
	return []byte(fmt.Sprintf("models:\n  - %s%s.intgemm.bin\nsource-language: %s\ntarget-language: %s\n", src, trg, src, trg))
}

type stubDetector struct {
	known     map[string]string
	detection Detection
	err       error
	lastHint  string
}

func (d *stubDetector) ResolveLanguage(name string) (string, bool) {
	id, ok := d.known[name]
	return id, ok
}

func (d *stubDetector) DetectLanguage(text, hint string) (Detection, error) {
	d.lastHint = hint
	return d.detection, d.err
}
