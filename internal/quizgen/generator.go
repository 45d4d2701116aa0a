package quizgen

import (
	"context"
	"fmt"

	"quizlens/internal/domain"
	"quizlens/internal/llm"
)

// Purpose labels quiz generation calls in the LLM event log.
const Purpose = "quiz-gen"

// LLMGenerator asks a language model for multiple-choice questions.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate returns up to count questions about text. Transport failures are
// returned wrapped; unusable output is a *domain.MalformedPayloadError.
func (g *LLMGenerator) Generate(ctx context.Context, text string, count int, difficulty domain.Difficulty) ([]domain.Question, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.UserPrompt(buildPrompt(text, count, difficulty))
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = g.config.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	return Parse(resp.Text, count, g.config.RequireAnswerInOptions)
}
