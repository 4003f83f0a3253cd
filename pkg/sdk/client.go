package lexai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/app"
	"github.com/kailas-cloud/lexai/internal/domain"
	healthuc "github.com/kailas-cloud/lexai/internal/usecase/health"
)

// Narrow views of the app services the client calls.
type retrievalUseCase interface {
	HandleQuery(ctx context.Context, query, jurisdiction string) domain.Outcome
	Jurisdictions() []string
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the lexai SDK entry point. It is safe for concurrent use.
type Client struct {
	app       *app.App
	retrieval retrievalUseCase
	health    healthUseCase
}

// New creates a Client. The provided context bounds the initial Redis and SQL
// connection attempts.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}
	if len(cc.cfg.Jurisdictions) == 0 {
		return nil, errors.New("lexai: at least one jurisdiction is required (use WithJurisdiction)")
	}
	cc.cfg.ApplyDefaults()

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	appOpts := []app.Option{app.WithObserver(obs)}
	if cc.embedder != nil {
		appOpts = append(appOpts, app.WithEmbedder(&embedderAdapter{inner: cc.embedder}))
	}
	if cc.generator != nil {
		appOpts = append(appOpts, app.WithGenerator(&generatorAdapter{inner: cc.generator}))
	}

	a, err := app.New(ctx, cc.cfg, zap.NewNop(), appOpts...)
	if err != nil {
		return nil, fmt.Errorf("lexai: %w", err)
	}
	return &Client{app: a, retrieval: a.Retrieval, health: a.Health}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

// Ask answers query against the corpus of jurisdiction. It never returns an
// error: failures are reported in Outcome.Failure.
func (c *Client) Ask(ctx context.Context, query, jurisdiction string) Outcome {
	return outcomeFromDomain(c.retrieval.HandleQuery(ctx, query, jurisdiction))
}

// Jurisdictions returns the configured jurisdiction names in sorted order.
func (c *Client) Jurisdictions() []string {
	return c.retrieval.Jurisdictions()
}
