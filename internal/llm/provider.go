// Package llm talks to the language model that writes interview questions.
package llm

import (
	"context"
	"sync"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// Usage is the running token and cost total of a MeteredProvider.
type Usage struct {
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// MeteredProvider wraps a Provider and accumulates usage of successful calls.
type MeteredProvider struct {
	provider Provider
	mu       sync.Mutex
	usage    Usage
}

// NewMeteredProvider wraps p.
func NewMeteredProvider(p Provider) *MeteredProvider {
	return &MeteredProvider{provider: p}
}

func (m *MeteredProvider) Name() string { return m.provider.Name() }

func (m *MeteredProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := m.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.usage.Calls++
	m.usage.InputTokens += resp.InputTokens
	m.usage.OutputTokens += resp.OutputTokens
	m.usage.CostUSD += EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens)
	m.mu.Unlock()
	return resp, nil
}

// Usage returns a snapshot of the accumulated usage.
func (m *MeteredProvider) Usage() Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}
