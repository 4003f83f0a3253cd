// Package ollama adapts a local Ollama server to the domain Embedder and
// Generator contracts.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

const providerName = "ollama"

// Config holds the Ollama connection settings.
type Config struct {
	Host       string // empty = OLLAMA_HOST or the local default
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func newClient(cfg *Config) (*api.Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}
	hostURL := envconfig.Host()
	if cfg.Host != "" {
		u, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("ollama: parse host %q: %w", cfg.Host, err)
		}
		hostURL = u
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return api.NewClient(hostURL, httpClient), nil
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// classifyError maps Ollama client errors onto the domain provider taxonomy.
func classifyError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrProviderTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		wrap := domain.ErrProvider
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			wrap = domain.ErrProviderAuth
		}
		return fmt.Errorf("%s API error %d: %s: %w", op, statusErr.StatusCode, statusErr.ErrorMessage, wrap)
	}
	return fmt.Errorf("%s request failed: %s: %w", op, err.Error(), domain.ErrProvider)
}

func recordFailure(operation string, err error) {
	metrics.ProviderRequestsTotal.WithLabelValues(providerName, operation, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(providerName, operation, string(domain.Classify(err))).Inc()
}
