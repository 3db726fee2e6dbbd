package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ZaguanLabs/mtbridge"
)

// fakeCompletions answers chat completions by prefixing each input with
// the target named in the system prompt.
type fakeCompletions struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	agents   []string
	status   int
	reply    func(inputs []string) string
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.agents = append(f.agents, r.Header.Get("User-Agent"))
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
		return
	}

	var inputs []string
	_ = json.Unmarshal([]byte(req.Messages[len(req.Messages)-1].Content), &inputs)

	content := ""
	if f.reply != nil {
		content = f.reply(inputs)
	} else {
		out := make([]string, len(inputs))
		for i, in := range inputs {
			out[i] = "T(" + in + ")"
		}
		data, _ := json.Marshal(map[string][]string{"translations": out})
		content = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}

func (f *fakeCompletions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestEngine(t *testing.T, f *fakeCompletions) *OpenAIEngine {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewOpenAIEngine(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1"})
}

func TestOpenAIEngine_CreateModel(t *testing.T) {
	e := NewOpenAIEngine(OpenAIConfig{APIKey: "test"})

	m, err := e.CreateModel(context.Background(), &mtbridge.ModelConfig{TargetLanguage: "de"})
	if err != nil {
		t.Fatalf("CreateModel failed: %v", err)
	}
	if m.(*model).name != DefaultOpenAIModel {
		t.Errorf("model name = %q, want default", m.(*model).name)
	}

	m, _ = e.CreateModel(context.Background(), &mtbridge.ModelConfig{
		Models:         []string{"llama3.1:8b"},
		TargetLanguage: "de",
	})
	if m.(*model).name != "llama3.1:8b" {
		t.Errorf("model name = %q", m.(*model).name)
	}

	m, _ = e.CreateModel(context.Background(), &mtbridge.ModelConfig{
		Models:         []string{"model.ende.bin"},
		TargetLanguage: "de",
		Extra:          map[string]any{"remote-model": "gpt-4o"},
	})
	if m.(*model).name != "gpt-4o" {
		t.Errorf("remote-model override = %q", m.(*model).name)
	}

	if _, err := e.CreateModel(context.Background(), &mtbridge.ModelConfig{}); err == nil {
		t.Error("missing target-language should fail")
	}
}

func TestOpenAIEngine_Translate(t *testing.T) {
	f := &fakeCompletions{}
	e := newTestEngine(t, f)
	m := mustModel(t, e, &mtbridge.ModelConfig{Models: []string{"local"}, SourceLanguage: "en", TargetLanguage: "de"})

	resp, err := e.Translate(context.Background(), []mtbridge.Model{m}, []string{"Hello", "", "World"}, plain(3))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := []string{"T(Hello)", "", "T(World)"}
	for i, r := range resp {
		if r.Target != want[i] {
			t.Errorf("resp[%d] = %q, want %q", i, r.Target, want[i])
		}
	}

	if f.count() != 1 {
		t.Fatalf("expected 1 request, got %d", f.count())
	}
	req := f.requests[0]
	if req.Model != "local" {
		t.Errorf("request model = %q", req.Model)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("request should ask for a JSON object")
	}
	if !strings.Contains(req.Messages[0].Content, "from English to German") {
		t.Errorf("system prompt should name the pair, got: %s", req.Messages[0].Content)
	}
	if req.Messages[1].Content != `["Hello","World"]` {
		t.Errorf("empty inputs should not be sent, got %s", req.Messages[1].Content)
	}
}

func TestOpenAIEngine_UserAgent(t *testing.T) {
	f := &fakeCompletions{}
	e := newTestEngine(t, f)

	m, _ := e.CreateModel(context.Background(), &mtbridge.ModelConfig{TargetLanguage: "de"})
	if _, err := e.Translate(context.Background(), []mtbridge.Model{m}, []string{"Hi"}, nil); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.agents) != 1 || f.agents[0] != mtbridge.UserAgent() {
		t.Errorf("User-Agent = %v, want %q", f.agents, mtbridge.UserAgent())
	}
}

func TestOpenAIEngine_Pivot(t *testing.T) {
	f := &fakeCompletions{}
	e := newTestEngine(t, f)
	first := mustModel(t, e, &mtbridge.ModelConfig{SourceLanguage: "fr", TargetLanguage: "en"})
	second := mustModel(t, e, &mtbridge.ModelConfig{SourceLanguage: "en", TargetLanguage: "de"})

	resp, err := e.Translate(context.Background(), []mtbridge.Model{first, second}, []string{"Bonjour"}, plain(1))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if resp[0].Target != "T(T(Bonjour))" {
		t.Errorf("pivot result = %q", resp[0].Target)
	}
	if f.count() != 2 {
		t.Errorf("expected one request per hop, got %d", f.count())
	}
}

func TestOpenAIEngine_LexiconSkipsRequest(t *testing.T) {
	f := &fakeCompletions{}
	e := newTestEngine(t, f)
	m := mustModel(t, e, &mtbridge.ModelConfig{
		TargetLanguage: "de",
		Lexicon:        map[string]string{"Hello": "Hallo"},
	})

	resp, err := e.Translate(context.Background(), []mtbridge.Model{m}, []string{"Hello"}, plain(1))
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if resp[0].Target != "Hallo" {
		t.Errorf("lexicon result = %q", resp[0].Target)
	}
	if f.count() != 0 {
		t.Errorf("lexicon hit should not call the API, got %d requests", f.count())
	}
}

func TestOpenAIEngine_HTML(t *testing.T) {
	f := &fakeCompletions{}
	e := newTestEngine(t, f)
	m := mustModel(t, e, &mtbridge.ModelConfig{TargetLanguage: "de"})

	opts := []mtbridge.ResponseOptions{{HTML: true}, {}}
	resp, err := e.Translate(context.Background(), []mtbridge.Model{m},
		[]string{`<p>Hello <b>there</b></p><code>x = 1</code>`, "plain"}, opts)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if resp[0].Target != `<p>T(Hello) <b>T(there)</b></p><code>x = 1</code>` {
		t.Errorf("html result = %q", resp[0].Target)
	}
	if resp[1].Target != "T(plain)" {
		t.Errorf("plain result = %q", resp[1].Target)
	}
	if f.count() != 1 {
		t.Errorf("HTML segments and plain inputs should share one request, got %d", f.count())
	}
}

func TestOpenAIEngine_CountMismatch(t *testing.T) {
	f := &fakeCompletions{reply: func([]string) string { return `{"translations": ["only one"]}` }}
	e := newTestEngine(t, f)
	m := mustModel(t, e, &mtbridge.ModelConfig{TargetLanguage: "de"})

	_, err := e.Translate(context.Background(), []mtbridge.Model{m}, []string{"a", "b"}, plain(2))

	var mismatch *mtbridge.CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected CountMismatchError, got %v", err)
	}
	if mismatch.Expected != 2 || mismatch.Got != 1 {
		t.Errorf("mismatch = %+v", mismatch)
	}
}

func TestOpenAIEngine_ServerError(t *testing.T) {
	f := &fakeCompletions{status: http.StatusServiceUnavailable}
	e := newTestEngine(t, f)
	m := mustModel(t, e, &mtbridge.ModelConfig{TargetLanguage: "de"})

	_, err := e.Translate(context.Background(), []mtbridge.Model{m}, []string{"a"}, plain(1))

	var invErr *mtbridge.EngineInvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected EngineInvocationError, got %v", err)
	}
	if !invErr.Retryable {
		t.Error("503 should be retryable")
	}
	if !mtbridge.IsRetryable(err) {
		t.Error("IsRetryable should agree")
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		count   int
		want    []string
		wantErr bool
	}{
		{"translations key", `{"translations": ["Hola", "Mundo"]}`, 2, []string{"Hola", "Mundo"}, false},
		{"bare array", `["Hola"]`, 1, []string{"Hola"}, false},
		{"non-string entry", `{"translations": [42]}`, 1, []string{"42"}, false},
		{"padded", "\n {\"translations\": [\"x\"]} \n", 1, []string{"x"}, false},
		{"wrong count", `{"translations": ["a"]}`, 2, nil, true},
		{"garbage", `not json`, 1, nil, true},
		{"missing key", `{"other": "x"}`, 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.content, tt.count)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseResponse failed: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	m := &model{source: "fr", target: "pt_BR", lexicon: map[string]string{"maison": "casa"}}
	prompt := buildSystemPrompt(m)

	if !strings.Contains(prompt, "French") || !strings.Contains(prompt, "Portuguese") {
		t.Errorf("prompt should name both languages: %s", prompt)
	}
	if !strings.Contains(prompt, `"maison" → "casa"`) {
		t.Errorf("prompt should contain lexicon entries: %s", prompt)
	}
	if !strings.Contains(prompt, `"translations"`) {
		t.Error("prompt should describe the response format")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&openai.APIError{HTTPStatusCode: 429}, true},
		{&openai.APIError{HTTPStatusCode: 502}, true},
		{&openai.APIError{HTTPStatusCode: 401}, false},
		{&openai.RequestError{HTTPStatusCode: 503}, true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("invalid request"), false},
	}

	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
