package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

const opEmbed = "embed"

// Embedder produces embeddings through the /api/embed endpoint.
type Embedder struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Embedder{client: client, model: cfg.Model, logger: loggerOrNop(cfg.Logger)}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.embed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.embed(ctx, texts)
}

func (e *Embedder) embed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	start := time.Now()
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: texts})
	duration := time.Since(start)

	if err != nil {
		classified := classifyError("embedding", err)
		recordFailure(opEmbed, classified)
		return domain.BatchEmbeddingResult{}, classified
	}
	if len(resp.Embeddings) != len(texts) {
		err := fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(resp.Embeddings), len(texts), domain.ErrProvider)
		recordFailure(opEmbed, err)
		return domain.BatchEmbeddingResult{}, err
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, opEmbed, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(providerName, opEmbed).Observe(duration.Seconds())
	metrics.ProviderTokensTotal.WithLabelValues(providerName, opEmbed, "prompt").Add(float64(resp.PromptEvalCount))

	e.logger.Debug("Embedding request completed",
		zap.String("model", e.model),
		zap.Int("inputs", len(texts)),
		zap.Duration("duration", duration),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   resp.Embeddings,
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// HealthCheck pings the server via the version endpoint.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.Version(ctx); err != nil {
		return classifyError("version", err)
	}
	return nil
}
