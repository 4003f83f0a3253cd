package lexai

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/lexai/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cfg config.Config

	embedder  Embedder
	generator Generator

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithJurisdiction registers a jurisdiction: its corpus locator and the
// persona the model answers as. Call once per jurisdiction.
func WithJurisdiction(name, corpus, roleDescription string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.cfg.Jurisdictions == nil {
			c.cfg.Jurisdictions = make(map[string]config.JurisdictionConfig)
		}
		c.cfg.Jurisdictions[name] = config.JurisdictionConfig{
			Corpus:          corpus,
			RoleDescription: roleDescription,
		}
	})
}

// WithOpenAI uses an OpenAI-compatible API for both embeddings and answers.
// Empty baseURL means api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Providers.Embedding.Kind = config.ProviderOpenAI
		c.cfg.Providers.Embedding.APIKey = apiKey
		c.cfg.Providers.Embedding.BaseURL = baseURL
		c.cfg.Providers.Generation.Kind = config.ProviderOpenAI
		c.cfg.Providers.Generation.APIKey = apiKey
		c.cfg.Providers.Generation.BaseURL = baseURL
	})
}

// WithOllama uses an Ollama server for both embeddings and answers.
// Empty host means OLLAMA_HOST or the local default.
func WithOllama(host, embeddingModel, chatModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Providers.Embedding = config.EmbeddingProviderConfig{
			Kind: config.ProviderOllama, BaseURL: host, Model: embeddingModel,
		}
		c.cfg.Providers.Generation.Kind = config.ProviderOllama
		c.cfg.Providers.Generation.BaseURL = host
		c.cfg.Providers.Generation.Model = chatModel
	})
}

// WithModels overrides the embedding and chat model names.
// Defaults: text-embedding-ada-002 and gpt-4.
func WithModels(embeddingModel, chatModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Providers.Embedding.Model = embeddingModel
		c.cfg.Providers.Generation.Model = chatModel
	})
}

// WithEmbedder sets a custom embedding provider. It takes precedence over
// WithOpenAI and WithOllama.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets a custom answer generator. It takes precedence over
// WithOpenAI and WithOllama.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithTopK sets how many corpus records ground each answer.
// Default: 3.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Retrieval.TopK = k
	})
}

// WithCallTimeout bounds each provider call, rounded up to whole seconds.
// Default: 30s.
func WithCallTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Providers.CallTimeoutSec = int((d + time.Second - 1) / time.Second)
	})
}

// WithCorpusCache keeps loaded corpora in memory. ttl 0 means they never expire.
func WithCorpusCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Corpus.Cache.Enabled = true
		c.cfg.Corpus.Cache.TTLSec = int(ttl / time.Second)
	})
}

// WithRedis connects to Redis or Valkey for redis:// corpus locators and the
// query embedding cache.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Cache.Redis.Addrs = []string{addr}
		c.cfg.Cache.Redis.Password = password
	})
}

// WithSQL opens a database for sql:// corpus locators. driver is "pgx" or "sqlite".
func WithSQL(driver, dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cfg.Corpus.SQL.Driver = driver
		c.cfg.Corpus.SQL.DSN = dsn
	})
}

// WithLogger enables structured logging of answered questions.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (question counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
