// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/scopedoc/internal/llm"
)

// Provider replays canned replies in order; the last reply repeats. When
// Gate is non-nil every call blocks until Gate is closed or ctx ends.
type Provider struct {
	mu      sync.Mutex
	replies []string
	calls   []llm.CompletionRequest

	Err  error
	Gate chan struct{}
	// Entered receives a value each time a call starts, if non-nil.
	Entered chan struct{}
}

// New returns a provider replaying replies.
func New(replies ...string) *Provider {
	return &Provider{replies: replies}
}

func (p *Provider) Name() string { return "llmtest" }

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	gate, entered := p.Gate, p.Entered
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.replies) == 0 {
		return nil, llm.ErrEmptyCompletion
	}
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return &llm.CompletionResponse{
		Content:      reply,
		InputTokens:  llm.EstimateTokens(lastContent(req)),
		OutputTokens: llm.EstimateTokens(reply),
		Model:        "llmtest",
		FinishReason: "stop",
	}, nil
}

// Calls returns the requests received so far.
func (p *Provider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.CompletionRequest(nil), p.calls...)
}

func lastContent(req llm.CompletionRequest) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}

// AskReply is a well-formed ask_question reply.
func AskReply(id, text, category string) string {
	return `{"action":"ask_question","question":{"id":"` + id + `","text":"` + text +
		`","category":"` + category + `","type":"text"},"sufficiency_evaluation":{"sufficient":false,"confidence":0.3}}`
}

// CompleteReply is a well-formed complete reply.
const CompleteReply = `{"action":"complete","sufficiency_evaluation":{"sufficient":true,"confidence":0.9}}`
