package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

const opEmbed = "embed"

// ErrMissingAPIKey is returned by constructors when no credential is configured.
var ErrMissingAPIKey = errors.New("openai: api key is required")

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the provider settings shared by Embedder and Generator.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string // metrics label, defaults to "openai"
	Logger     *zap.Logger
}

func (c *Config) clientConfig() (openai.ClientConfig, error) {
	if c.APIKey == "" {
		return openai.ClientConfig{}, ErrMissingAPIKey
	}
	clientCfg := openai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		clientCfg.BaseURL = c.BaseURL
	}
	return clientCfg, nil
}

func (c *Config) providerName() string {
	if c.Provider == "" {
		return "openai"
	}
	return c.Provider
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	clientCfg, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: embedding model is required")
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   cfg.providerName(),
		logger:     cfg.logger(),
	}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Vectors are returned in input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return e.create(ctx, texts)
}

func (e *Embedder) create(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		classified := classifyError("embedding", err)
		e.recordFailure(classified)
		return domain.BatchEmbeddingResult{}, classified
	}

	if len(resp.Data) != len(texts) {
		err := fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(resp.Data), len(texts), domain.ErrProvider)
		e.recordFailure(err)
		return domain.BatchEmbeddingResult{}, err
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, len(resp.Data))
	for i := range resp.Data {
		out[i] = resp.Data[i].Embedding
	}

	metrics.ProviderRequestsTotal.WithLabelValues(e.provider, opEmbed, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(e.provider, opEmbed).Observe(duration.Seconds())
	if resp.Usage.PromptTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(e.provider, opEmbed, "prompt").Add(float64(resp.Usage.PromptTokens))
	}

	e.logger.Debug("Embedding request completed",
		zap.String("model", string(e.model)),
		zap.Int("inputs", len(texts)),
		zap.Duration("duration", duration),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

func (e *Embedder) recordFailure(err error) {
	metrics.ProviderRequestsTotal.WithLabelValues(e.provider, opEmbed, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(e.provider, opEmbed, string(domain.Classify(err))).Inc()
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return classifyError("list models", err)
	}
	return nil
}
