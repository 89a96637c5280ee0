package interview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ziadkadry99/scopedoc/internal/llm"
	"github.com/ziadkadry99/scopedoc/internal/logging"
)

// Generator asks a language model for the next interview question.
type Generator struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// NewGenerator returns a generator over provider. An empty model lets the
// provider use its default.
func NewGenerator(provider llm.Provider, model string, logger *slog.Logger) *Generator {
	return &Generator{
		provider:    provider,
		model:       model,
		maxTokens:   800,
		temperature: 0.4,
		logger:      logging.OrDiscard(logger),
	}
}

// Next issues one generation call and validates the reply. Transport errors
// are returned wrapped; malformed replies are *InvalidResponseError. Nothing
// is retried.
func (g *Generator) Next(ctx context.Context, c Context) (*Response, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model:       g.model,
		Messages:    c.Messages(),
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	parsed, err := ParseResponse(resp.Content)
	if err != nil {
		g.logger.Warn("interview: rejected generator reply", "provider", g.provider.Name(), "error", err)
		return nil, err
	}
	if parsed.Question != nil && parsed.Question.ID == "" {
		parsed.Question.ID = "q_" + uuid.NewString()[:8]
	}
	g.logger.Debug("interview: generator replied",
		"action", parsed.Action,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens)
	return parsed, nil
}
