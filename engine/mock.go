package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/mtbridge"
)

// MockEngine is a deterministic engine for testing.
// A text found in the model's lexicon is replaced by its entry; any other
// non-empty text becomes "[<target>] text".
type MockEngine struct {
	mu sync.Mutex

	CallCount   int        // Number of Translate calls
	Calls       [][]string // Texts of every Translate call
	LastModels  []string   // Target languages of the last call's chain
	ModelsMade  int        // Number of models created
	CreateError error      // Returned by CreateModel when set
	Error       error      // Returned by Translate when set
}

// NewMockEngine creates a mock engine.
func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

// CreateModel builds a mock model. The config must name a target language.
func (m *MockEngine) CreateModel(ctx context.Context, cfg *mtbridge.ModelConfig) (mtbridge.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateError != nil {
		return nil, m.CreateError
	}
	model, err := newModel(cfg, "mock")
	if err != nil {
		return nil, err
	}
	m.ModelsMade++
	return model, nil
}

// Translate returns mock translations, chaining through every model.
func (m *MockEngine) Translate(ctx context.Context, models []mtbridge.Model, texts []string, opts []mtbridge.ResponseOptions) ([]mtbridge.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Calls = append(m.Calls, append([]string(nil), texts...))
	m.LastModels = m.LastModels[:0]
	for _, mm := range models {
		m.LastModels = append(m.LastModels, mm.TargetLanguage())
	}

	if m.Error != nil {
		return nil, m.Error
	}

	chain := make([]*model, len(models))
	for i, mm := range models {
		model, ok := asModel(mm)
		if !ok {
			return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: fmt.Errorf("foreign model %T", mm)}
		}
		chain[i] = model
	}

	responses := make([]mtbridge.Response, len(texts))
	for i, text := range texts {
		out := text
		for _, model := range chain {
			out = mockTranslate(model, out)
		}
		responses[i] = mtbridge.Response{Source: text, Target: out}
	}
	return responses, nil
}

func mockTranslate(m *model, text string) string {
	if text == "" {
		return ""
	}
	if v, ok := m.lexicon[text]; ok {
		return v
	}
	return fmt.Sprintf("[%s] %s", m.target, text)
}

// Reset clears the recorded calls.
func (m *MockEngine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.Calls = nil
	m.LastModels = nil
}

// LastCall returns the texts of the most recent Translate call.
func (m *MockEngine) LastCall() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}

var _ mtbridge.TranslationEngine = (*MockEngine)(nil)
