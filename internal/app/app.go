// Package app assembles lexai components from configuration. It is shared by
// the server, the terminal client and the indexer.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/config"
	"github.com/kailas-cloud/lexai/internal/db"
	dbRedis "github.com/kailas-cloud/lexai/internal/db/redis"
	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
	"github.com/kailas-cloud/lexai/internal/repository/corpus"
	"github.com/kailas-cloud/lexai/internal/repository/embcache"
	embeddinguc "github.com/kailas-cloud/lexai/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/lexai/internal/usecase/health"
	"github.com/kailas-cloud/lexai/internal/usecase/indexing"
	"github.com/kailas-cloud/lexai/internal/usecase/retrieval"
)

// App holds the wired components. Close releases its connections.
type App struct {
	Retrieval *retrieval.Service
	Health    *healthuc.Service
	Indexing  *indexing.Service

	store  db.Store
	sqlDB  *sql.DB
	logger *zap.Logger
}

// Option overrides a component built from configuration.
type Option func(*options)

type options struct {
	embedder  Embedder
	generator Generator
	observer  retrieval.Observer
}

// WithEmbedder replaces the configured embedding provider.
func WithEmbedder(e Embedder) Option { return func(o *options) { o.embedder = e } }

// WithGenerator replaces the configured generation provider.
func WithGenerator(g Generator) Option { return func(o *options) { o.generator = g } }

// WithObserver adds a run observer next to the Prometheus one.
func WithObserver(obs retrieval.Observer) Option { return func(o *options) { o.observer = obs } }

// New builds an App from a validated configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Register()

	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var backends []corpus.Option
	if len(cfg.Cache.Redis.Addrs) > 0 {
		if a.store, err = openRedis(ctx, cfg.Cache.Redis); err != nil {
			return nil, err
		}
		backends = append(backends, corpus.WithKV(a.store))
		logger.Info("Connected to Redis", zap.Strings("addrs", cfg.Cache.Redis.Addrs))
	}
	if cfg.Corpus.SQL.DSN != "" {
		if a.sqlDB, err = corpus.OpenSQL(ctx, cfg.Corpus.SQL.Driver, cfg.Corpus.SQL.DSN); err != nil {
			return nil, fmt.Errorf("open corpus database: %w", err)
		}
		backends = append(backends, corpus.WithSQL(a.sqlDB, cfg.Corpus.SQL.Driver))
		logger.Info("Connected to corpus database", zap.String("driver", cfg.Corpus.SQL.Driver))
	}

	base := o.embedder
	if base == nil {
		if base, err = NewEmbedder(cfg.Providers.Embedding, logger); err != nil {
			return nil, err
		}
	}
	gen := o.generator
	if gen == nil {
		if gen, err = NewGenerator(cfg.Providers.Generation, logger); err != nil {
			return nil, err
		}
	}
	logger.Info("Providers created",
		zap.String("embedding", providerKind(cfg.Providers.Embedding.Kind)),
		zap.String("embedding_model", cfg.Providers.Embedding.Model),
		zap.String("generation", providerKind(cfg.Providers.Generation.Kind)),
		zap.String("generation_model", cfg.Providers.Generation.Model),
	)

	table, err := cfg.JurisdictionTable()
	if err != nil {
		return nil, err
	}

	var source retrieval.CorpusLoader = corpus.NewLoader(logger, backends...)
	if cfg.Corpus.Cache.Enabled {
		source = corpus.NewCache(source, time.Duration(cfg.Corpus.Cache.TTLSec)*time.Second)
	}

	a.Retrieval, err = retrieval.New(
		table,
		a.queryEmbedder(cfg, base),
		source,
		gen,
		retrieval.Config{
			TopK:         cfg.Retrieval.TopK,
			RoleTemplate: cfg.Retrieval.RoleTemplate,
			CallTimeout:  time.Duration(cfg.Providers.CallTimeoutSec) * time.Second,
			Observer:     observers{metrics.QueryObserver{}, o.observer},
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	docEmbedder := embeddinguc.NewInstrumentedEmbedder(
		base, providerKind(cfg.Providers.Embedding.Kind), cfg.Providers.Embedding.Model, logger,
	)
	a.Indexing = indexing.New(docEmbedder, corpus.NewWriter(backends...), logger)

	checks := map[string]healthuc.Checker{
		"embedding":  base,
		"generation": gen,
	}
	if a.store != nil {
		checks["cache"] = healthuc.PingCheck(a.store)
	}
	if a.sqlDB != nil {
		checks["corpus_db"] = healthuc.CheckFunc(a.sqlDB.PingContext)
	}
	a.Health = healthuc.New(checks, logger)

	return a, nil
}

// queryEmbedder assembles the decorator chain: provider -> cached -> instrumented -> instruction.
func (a *App) queryEmbedder(cfg config.Config, base domain.Embedder) domain.Embedder {
	pc := cfg.Providers.Embedding

	embedder := base
	if a.store != nil {
		ttl := time.Duration(cfg.Cache.Redis.EmbeddingTTLSec) * time.Second
		embedder = embcache.New(base, a.store, pc.Model, ttl, metrics.EmbeddingCacheTotal, a.logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, providerKind(pc.Kind), pc.Model, a.logger)

	// outermost, so the cache key includes the instruction
	if pc.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, pc.QueryInstruction)
	}
	return embedder
}

// Close releases the Redis and SQL connections. Safe to call more than once.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			a.logger.Warn("Close corpus database", zap.Error(err))
		}
		a.sqlDB = nil
	}
}

func openRedis(ctx context.Context, cfg config.RedisConfig) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Password: cfg.Password})
	if err != nil {
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	return store, nil
}

// observers fans a run out to every non-nil observer.
type observers []retrieval.Observer

func (obs observers) ObserveQuery(jurisdiction string, outcome domain.Outcome, elapsed time.Duration) {
	for _, o := range obs {
		if o != nil {
			o.ObserveQuery(jurisdiction, outcome, elapsed)
		}
	}
}

func providerKind(kind string) string {
	if kind == "" {
		return config.ProviderOpenAI
	}
	return kind
}
