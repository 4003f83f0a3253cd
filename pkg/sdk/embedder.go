package lexai

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Embedder converts text to a vector. It must use the same model the corpus was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces an answer from an ordered message set.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps public Generator to satisfy internal domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, messages []domain.Message) (domain.GenerationResult, error) {
	msgs := make([]Message, len(messages))
	for i, m := range messages {
		msgs[i] = Message{Role: m.Role, Content: m.Content}
	}
	text, err := a.inner.Generate(ctx, msgs)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{Text: text}, nil
}

// BatchEmbed embeds texts one at a time; public embedders have no batch call.
func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, a, texts)
}

func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, a.inner)
}

func (a *generatorAdapter) HealthCheck(ctx context.Context) error {
	return healthCheck(ctx, a.inner)
}

// healthCheck delegates to v when it reports its own health.
func healthCheck(ctx context.Context, v any) error {
	if hc, ok := v.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
