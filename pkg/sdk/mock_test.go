package lexai

import (
	"context"
	"sync"
)

// --- Embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

// --- Generator mock ---

type mockGenerator struct {
	mu       sync.Mutex
	fn       func(ctx context.Context, messages []Message) (string, error)
	healthFn func(ctx context.Context) error
	calls    [][]Message
}

func (m *mockGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	return m.fn(ctx, messages)
}

func (m *mockGenerator) HealthCheck(ctx context.Context) error {
	if m.healthFn == nil {
		return nil
	}
	return m.healthFn(ctx)
}
