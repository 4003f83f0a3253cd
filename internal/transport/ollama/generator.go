package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

const opGenerate = "generate"

// GenerationParams are passed to Ollama as model options.
type GenerationParams struct {
	Temperature      float32
	TopP             float32
	MaxTokens        int
	FrequencyPenalty float32
	PresencePenalty  float32
}

func (p GenerationParams) options() map[string]any {
	opts := map[string]any{
		"temperature":       p.Temperature,
		"top_p":             p.TopP,
		"frequency_penalty": p.FrequencyPenalty,
		"presence_penalty":  p.PresencePenalty,
	}
	if p.MaxTokens > 0 {
		opts["num_predict"] = p.MaxTokens
	}
	return opts
}

// Generator answers through the /api/chat endpoint.
type Generator struct {
	client *api.Client
	model  string
	params GenerationParams
	logger *zap.Logger
}

// NewGenerator creates an Ollama chat generator.
func NewGenerator(cfg *Config, params GenerationParams) (*Generator, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: cfg.Model, params: params, logger: loggerOrNop(cfg.Logger)}, nil
}

// Generate implements domain.Generator. The response is requested unstreamed,
// but chunks are concatenated in case the server streams anyway.
func (g *Generator) Generate(ctx context.Context, messages []domain.Message) (domain.GenerationResult, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    g.model,
		Messages: toChatMessages(messages),
		Stream:   &stream,
		Options:  g.params.options(),
	}

	var (
		text  strings.Builder
		final api.ChatResponse
	)
	start := time.Now()
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		if resp.Done {
			final = resp
		}
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		classified := classifyError("chat", err)
		recordFailure(opGenerate, classified)
		return domain.GenerationResult{}, classified
	}
	if !final.Done {
		err := fmt.Errorf("chat stream ended without a final response: %w", domain.ErrProvider)
		recordFailure(opGenerate, err)
		return domain.GenerationResult{}, err
	}

	metrics.ProviderRequestsTotal.WithLabelValues(providerName, opGenerate, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(providerName, opGenerate).Observe(duration.Seconds())
	metrics.ProviderTokensTotal.WithLabelValues(providerName, opGenerate, "prompt").Add(float64(final.PromptEvalCount))
	metrics.ProviderTokensTotal.WithLabelValues(providerName, opGenerate, "completion").Add(float64(final.EvalCount))

	g.logger.Debug("Chat completed",
		zap.String("model", g.model),
		zap.String("done_reason", final.DoneReason),
		zap.Duration("duration", duration),
	)

	return domain.GenerationResult{
		Text:             text.String(),
		PromptTokens:     final.PromptEvalCount,
		CompletionTokens: final.EvalCount,
	}, nil
}

// HealthCheck pings the server via the version endpoint.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.Version(ctx); err != nil {
		return classifyError("version", err)
	}
	return nil
}

func toChatMessages(messages []domain.Message) []api.Message {
	out := make([]api.Message, len(messages))
	for i, m := range messages {
		out[i] = api.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
