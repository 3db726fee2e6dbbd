package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/mtbridge"
	"github.com/ZaguanLabs/mtbridge/markup"
)

// DefaultOpenAIModel is used when a config names no remote model.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIEngine translates through an OpenAI-compatible chat completion API.
// Each model config selects the remote model and language pair.
type OpenAIEngine struct {
	client      *openai.Client
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI engine.
type OpenAIConfig struct {
	APIKey      string       // API key (may be empty for local servers)
	BaseURL     string       // Custom base URL (optional)
	Temperature float32      // Sampling temperature (default: 0.2)
	HTTPClient  *http.Client // Custom HTTP client (optional)
}

// NewOpenAIEngine creates a new OpenAI engine.
func NewOpenAIEngine(cfg OpenAIConfig) *OpenAIEngine {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	config.HTTPClient = withUserAgent(httpClient)

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIEngine{
		client:      openai.NewClientWithConfig(config),
		temperature: temperature,
	}
}

// CreateModel validates cfg and records the remote model to use.
// No request is made until the first translation.
func (e *OpenAIEngine) CreateModel(ctx context.Context, cfg *mtbridge.ModelConfig) (mtbridge.Model, error) {
	return newModel(cfg, DefaultOpenAIModel)
}

// Translate runs texts through each model in turn, one request per model.
func (e *OpenAIEngine) Translate(ctx context.Context, models []mtbridge.Model, texts []string, opts []mtbridge.ResponseOptions) ([]mtbridge.Response, error) {
	if len(models) == 0 {
		return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: errors.New("no models")}
	}

	current := append([]string(nil), texts...)
	for _, mm := range models {
		m, ok := asModel(mm)
		if !ok {
			return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: fmt.Errorf("foreign model %T", mm)}
		}

		next, err := e.step(ctx, m, current, opts)
		if err != nil {
			return nil, err
		}
		current = next
	}

	responses := make([]mtbridge.Response, len(texts))
	for i := range texts {
		responses[i] = mtbridge.Response{Source: texts[i], Target: current[i]}
	}
	return responses, nil
}

// step translates one hop. Plain inputs are sent whole; HTML inputs are
// split into text segments. Everything goes out in a single request.
func (e *OpenAIEngine) step(ctx context.Context, m *model, texts []string, opts []mtbridge.ResponseOptions) ([]string, error) {
	out := make([]string, len(texts))
	docs := make([]*markup.Document, len(texts))

	var batch []string
	for i, text := range texts {
		if i < len(opts) && opts[i].HTML {
			doc, err := markup.Parse(text)
			if err != nil {
				return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: err}
			}
			docs[i] = doc
			batch = append(batch, doc.Texts()...)
			continue
		}
		if strings.TrimSpace(text) == "" {
			out[i] = text
			continue
		}
		batch = append(batch, text)
	}

	translated, err := e.complete(ctx, m, batch)
	if err != nil {
		return nil, err
	}

	pos := 0
	for i, text := range texts {
		if doc := docs[i]; doc != nil {
			n := doc.Len()
			if err := doc.Apply(translated[pos : pos+n]); err != nil {
				return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: err}
			}
			doc.SetLang(mtbridge.NormalizeLangTag(m.target))
			pos += n

			html, err := doc.HTML()
			if err != nil {
				return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: err}
			}
			out[i] = html
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out[i] = translated[pos]
		pos++
	}
	return out, nil
}

// complete sends one chat completion for batch.
func (e *OpenAIEngine) complete(ctx context.Context, m *model, batch []string) ([]string, error) {
	if len(batch) == 0 {
		return []string{}, nil
	}

	// Lexicon hits skip the request entirely.
	result := make([]string, len(batch))
	var pending []string
	var pendingIdx []int
	for i, text := range batch {
		if v, ok := m.lexicon[text]; ok {
			result[i] = v
			continue
		}
		pending = append(pending, text)
		pendingIdx = append(pendingIdx, i)
	}
	if len(pending) == 0 {
		return result, nil
	}

	userMessage, err := json.Marshal(pending)
	if err != nil {
		return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: err}
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.name,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(m)},
			{Role: openai.ChatMessageRoleUser, Content: string(userMessage)},
		},
		Temperature: e.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &mtbridge.EngineInvocationError{
			Op:        "translate",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &mtbridge.EngineInvocationError{
			Op:        "translate",
			Cause:     errors.New("no choices in response"),
			Retryable: true,
		}
	}

	translations, err := parseResponse(resp.Choices[0].Message.Content, len(pending))
	if err != nil {
		return nil, &mtbridge.EngineInvocationError{Op: "translate", Cause: err}
	}

	for j, i := range pendingIdx {
		result[i] = translations[j]
	}
	return result, nil
}

func buildSystemPrompt(m *model) string {
	target := mtbridge.GetLanguageName(m.target)
	source := "the source language"
	if m.source != "" {
		source = mtbridge.GetLanguageName(m.source)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You are a machine translation system translating from %s to %s.

# Task
The user message is a JSON array of strings. Translate every string into %s.
- Translate faithfully; do not add, drop or explain content.
- Preserve placeholders (e.g. {name}, %%s, $1), URLs, and meaningful whitespace.
- Never merge or split entries.`, source, target, target)

	if len(m.lexicon) > 0 {
		b.WriteString("\n\n# Glossary\nUse these translations when the phrase appears:")
		for src, dst := range m.lexicon {
			fmt.Fprintf(&b, "\n- %q → %q", src, dst)
		}
	}

	b.WriteString(`

# Format
Return a JSON object with a single key "translations" holding an array of strings, in the same order and of the same length as the input.
Example: {"translations": ["first", "second"]}`)

	return b.String()
}

func parseResponse(content string, expectedCount int) ([]string, error) {
	content = strings.TrimSpace(content)

	var obj struct {
		Translations []any `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj.Translations != nil {
		return toStringSlice(obj.Translations, expectedCount)
	}

	// Some servers ignore the response format and return a bare array.
	var arr []any
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return toStringSlice(arr, expectedCount)
	}

	return nil, fmt.Errorf("invalid response format: %.80q", content)
}

func toStringSlice(arr []any, expectedCount int) ([]string, error) {
	if len(arr) != expectedCount {
		return nil, &mtbridge.CountMismatchError{Expected: expectedCount, Got: len(arr)}
	}

	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}
	return result, nil
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection refused", "connection reset", "temporary"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// userAgentTransport stamps outgoing requests with the library user agent.
type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", mtbridge.UserAgent())
	return t.next.RoundTrip(req)
}

func withUserAgent(c *http.Client) *http.Client {
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped := *c
	wrapped.Transport = userAgentTransport{next: next}
	return &wrapped
}

var _ mtbridge.TranslationEngine = (*OpenAIEngine)(nil)
