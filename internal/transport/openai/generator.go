package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

const opGenerate = "generate"

// GenerationParams are the sampling settings sent with every chat completion.
type GenerationParams struct {
	Temperature      float32
	TopP             float32
	MaxTokens        int
	FrequencyPenalty float32
	PresencePenalty  float32
}

// Generator produces answers through the chat completions endpoint.
type Generator struct {
	client   *openai.Client
	model    string
	params   GenerationParams
	user     string
	provider string
	logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg *Config, params GenerationParams) (*Generator, error) {
	clientCfg, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: generation model is required")
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		params:   params,
		user:     cfg.User,
		provider: cfg.providerName(),
		logger:   cfg.logger(),
	}, nil
}

// Generate implements domain.Generator. Exactly one completion is requested.
func (g *Generator) Generate(ctx context.Context, messages []domain.Message) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model:            g.model,
		Messages:         toChatMessages(messages),
		Temperature:      g.params.Temperature,
		TopP:             g.params.TopP,
		MaxTokens:        g.params.MaxTokens,
		FrequencyPenalty: g.params.FrequencyPenalty,
		PresencePenalty:  g.params.PresencePenalty,
		N:                1,
		User:             g.user,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		classified := classifyError("chat completion", err)
		g.recordFailure(classified)
		return domain.GenerationResult{}, classified
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("chat completion returned no choices: %w", domain.ErrProvider)
		g.recordFailure(err)
		return domain.GenerationResult{}, err
	}

	metrics.ProviderRequestsTotal.WithLabelValues(g.provider, opGenerate, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(g.provider, opGenerate).Observe(duration.Seconds())
	metrics.ProviderTokensTotal.WithLabelValues(g.provider, opGenerate, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.ProviderTokensTotal.WithLabelValues(g.provider, opGenerate, "completion").Add(float64(resp.Usage.CompletionTokens))

	g.logger.Debug("Chat completion finished",
		zap.String("model", g.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Duration("duration", duration),
	)

	return domain.GenerationResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (g *Generator) recordFailure(err error) {
	metrics.ProviderRequestsTotal.WithLabelValues(g.provider, opGenerate, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(g.provider, opGenerate, string(domain.Classify(err))).Inc()
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return classifyError("list models", err)
	}
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: chatRole(m.Role), Content: m.Content}
	}
	return out
}

func chatRole(r string) string {
	switch r {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
