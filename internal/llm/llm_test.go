package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      `{"action":"complete"}`,
			InputTokens:  1000,
			OutputTokens: 200,
			Model:        "gpt-4o-mini",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func helloRequest() CompletionRequest {
	return CompletionRequest{
		Model:    "test-model",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
}

func TestFactoryReturnsErrorForMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	for _, p := range []string{"anthropic", "openai", "openrouter"} {
		if _, err := NewProvider(p, "some-model"); err == nil {
			t.Errorf("expected error for provider %q with missing API key", p)
		}
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	if _, err := NewProvider("unknown", "some-model"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryCreatesProviders(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENROUTER_API_KEY", "test-key")
	t.Setenv("OLLAMA_HOST", "")

	for _, name := range []string{"anthropic", "openai", "openrouter", "ollama"} {
		p, err := NewProvider(name, "m")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("expected name %q, got %q", name, p.Name())
		}
	}
}

func TestAnthropicProviderSendsSystemAndJSONInstruction(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "k" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"action\":\"complete\"}"}],
			"model":"claude-haiku-4-5-20251001","stop_reason":"end_turn",
			"usage":{"input_tokens":12,"output_tokens":5}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("k", "claude-haiku-4-5-20251001").WithURL(srv.URL)
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You interview clients."},
			{Role: RoleUser, Content: "Next question please."},
		},
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != `{"action":"complete"}` || resp.InputTokens != 12 {
		t.Errorf("unexpected response %+v", resp)
	}
	if !strings.Contains(got.System, "You interview clients.") || !strings.Contains(got.System, jsonOnlyInstruction) {
		t.Errorf("system = %q", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Model != "claude-haiku-4-5-20251001" || got.MaxTokens != defaultMaxTokens {
		t.Errorf("model/max tokens = %s/%d", got.Model, got.MaxTokens)
	}
}

func TestAnthropicProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"bad"}}`, "invalid_request_error"},
		{"non-json", http.StatusBadGateway, `upstream down`, "status 502"},
		{"empty", http.StatusOK, `{"content":[]}`, ErrEmptyCompletion.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			_, err := NewAnthropicProvider("k", "m").WithURL(srv.URL).Complete(context.Background(), helloRequest())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestMeteredProviderAccumulates(t *testing.T) {
	mock := NewMockProvider("test")
	m := NewMeteredProvider(mock)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := m.Complete(ctx, helloRequest()); err != nil {
			t.Fatal(err)
		}
	}
	mock.Err = errors.New("boom")
	if _, err := m.Complete(ctx, helloRequest()); err == nil {
		t.Fatal("expected error")
	}

	u := m.Usage()
	if u.Calls != 2 || u.InputTokens != 2000 || u.OutputTokens != 400 {
		t.Errorf("usage = %+v", u)
	}
	want := 2 * EstimateCost("gpt-4o-mini", 1000, 200)
	if u.CostUSD < want-1e-9 || u.CostUSD > want+1e-9 {
		t.Errorf("cost = %v, want %v", u.CostUSD, want)
	}
	if m.Name() != "test" {
		t.Errorf("name = %q", m.Name())
	}
}

func TestRateLimiterPassesThrough(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 60)

	resp, err := rl.Complete(context.Background(), helloRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content == "" {
		t.Error("expected content")
	}
	if rl.Name() != "test" {
		t.Errorf("expected name 'test', got %q", rl.Name())
	}
}

func TestRateLimiterLimitsRequests(t *testing.T) {
	mock := NewMockProvider("test")
	rl := NewRateLimitedProvider(mock, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	for i := 0; i < 2; i++ {
		if _, err := rl.Complete(ctx, helloRequest()); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}
	if _, err := rl.Complete(ctx, helloRequest()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", mock.CallCount())
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	mock := NewMockProvider("test")
	if NewRateLimitedProvider(mock, 0) != Provider(mock) {
		t.Error("rpm 0 should return the provider unwrapped")
	}
}

func TestEstimateCost(t *testing.T) {
	// $3/1M input + $15/1M output
	if got := EstimateCost("claude-sonnet-4-5-20250929", 1_000_000, 1_000_000); got < 17.99 || got > 18.01 {
		t.Errorf("expected ~$18, got $%.2f", got)
	}
	if got := EstimateCost("llama3", 1000, 500); got != 0 {
		t.Errorf("expected 0 for unknown model, got %f", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hi", 1},
		{"hello world!!", 3},
		{"a longer piece of text that has more characters", 11},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
