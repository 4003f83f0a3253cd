package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/config"
	"github.com/kailas-cloud/lexai/internal/domain"
	ollamatr "github.com/kailas-cloud/lexai/internal/transport/ollama"
	openaitr "github.com/kailas-cloud/lexai/internal/transport/openai"
)

// Embedder is an embedding provider that also reports its health.
type Embedder interface {
	domain.Embedder
	domain.BatchEmbedder
	domain.HealthChecker
}

// Generator is a generation provider that also reports its health.
type Generator interface {
	domain.Generator
	domain.HealthChecker
}

// NewEmbedder builds the configured embedding provider.
func NewEmbedder(cfg config.EmbeddingProviderConfig, logger *zap.Logger) (Embedder, error) {
	switch cfg.Kind {
	case config.ProviderOpenAI, "":
		e, err := openaitr.NewEmbedder(&openaitr.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
		return e, nil
	case config.ProviderOllama:
		e, err := ollamatr.NewEmbedder(&ollamatr.Config{
			Host:   cfg.BaseURL,
			Model:  cfg.Model,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("embedding provider: unknown kind %q", cfg.Kind)
	}
}

// NewGenerator builds the configured generation provider.
func NewGenerator(cfg config.GenerationProviderConfig, logger *zap.Logger) (Generator, error) {
	var temperature, topP float32
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.TopP != nil {
		topP = *cfg.TopP
	}

	switch cfg.Kind {
	case config.ProviderOpenAI, "":
		g, err := openaitr.NewGenerator(&openaitr.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		}, openaitr.GenerationParams{
			Temperature:      temperature,
			TopP:             topP,
			MaxTokens:        cfg.MaxTokens,
			FrequencyPenalty: cfg.FrequencyPenalty,
			PresencePenalty:  cfg.PresencePenalty,
		})
		if err != nil {
			return nil, fmt.Errorf("generation provider: %w", err)
		}
		return g, nil
	case config.ProviderOllama:
		g, err := ollamatr.NewGenerator(&ollamatr.Config{
			Host:   cfg.BaseURL,
			Model:  cfg.Model,
			Logger: logger,
		}, ollamatr.GenerationParams{
			Temperature:      temperature,
			TopP:             topP,
			MaxTokens:        cfg.MaxTokens,
			FrequencyPenalty: cfg.FrequencyPenalty,
			PresencePenalty:  cfg.PresencePenalty,
		})
		if err != nil {
			return nil, fmt.Errorf("generation provider: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("generation provider: unknown kind %q", cfg.Kind)
	}
}
