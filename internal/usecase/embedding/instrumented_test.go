package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
)

type mockEmbedder struct {
	result     domain.EmbeddingResult
	err        error
	batchErr   error
	short      bool
	batchCalls int
	batchSizes []int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	n := len(texts)
	if m.short {
		n--
	}
	embeddings := make([][]float32, n)
	for i := range n {
		embeddings[i] = []float32{float32(len(texts[i]))}
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

// plainMockEmbedder implements only Embedder, not BatchEmbedder.
type plainMockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 100,
		TotalTokens:  100,
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if result.TotalTokens != 100 {
		t.Fatalf("expected 100 total tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_ErrorKeepsKind(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("401: %w", domain.ErrProviderAuth)}
	p := NewInstrumentedEmbedder(inner, "test-err", "test-model-e", nil)

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrProviderAuth) {
		t.Fatalf("expected ErrProviderAuth, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{PromptTokens: 10, TotalTokens: 10}}
	p := NewInstrumentedEmbedder(inner, "test-batch", "test-model-b", zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if res.TotalTokens != 30 {
		t.Errorf("TotalTokens = %d, want 30", res.TotalTokens)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Chunks(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{TotalTokens: 1}}
	p := NewInstrumentedEmbedder(inner, "test-chunk", "model", zap.NewNop(), WithChunkSize(2))

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	res, err := p.BatchEmbed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantSizes := []int{2, 2, 1}
	if len(inner.batchSizes) != len(wantSizes) {
		t.Fatalf("batch sizes = %v, want %v", inner.batchSizes, wantSizes)
	}
	for i, n := range wantSizes {
		if inner.batchSizes[i] != n {
			t.Fatalf("batch sizes = %v, want %v", inner.batchSizes, wantSizes)
		}
	}
	for i, v := range res.Embeddings {
		if int(v[0]) != len(texts[i]) {
			t.Errorf("embedding %d out of order: %v", i, v)
		}
	}
	if res.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", res.TotalTokens)
	}
}

func TestInstrumentedEmbedder_DefaultChunkSize(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "model", zap.NewNop(), WithChunkSize(0))

	texts := make([]string, DefaultMaxAPIBatchSize+1)
	if _, err := p.BatchEmbed(context.Background(), texts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 2 {
		t.Errorf("expected 2 batch calls, got %d", inner.batchCalls)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil for empty input")
	}
	if inner.batchCalls != 0 {
		t.Errorf("expected no provider call")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: fmt.Errorf("api error: %w", domain.ErrProvider)}
	p := NewInstrumentedEmbedder(inner, "test-err", "model", zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_ShortResponse(t *testing.T) {
	inner := &mockEmbedder{short: true}
	p := NewInstrumentedEmbedder(inner, "test-short", "model", zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "model", zap.NewNop())

	_, err := p.BatchEmbed(ctx, []string{"a"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.batchCalls != 0 {
		t.Errorf("expected no provider call after cancellation")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_FallbackToSingle(t *testing.T) {
	inner := &plainMockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1},
		PromptTokens: 5,
		TotalTokens:  5,
	}}
	p := NewInstrumentedEmbedder(inner, "test-fb", "model", zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 fallback Embed calls, got %d", inner.calls)
	}
}
