package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/domain/grounding"
	"github.com/kailas-cloud/lexai/internal/domain/ranking"
	"github.com/kailas-cloud/lexai/internal/logger"
)

// DefaultTopK is the number of matches used for grounding when unset.
const DefaultTopK = 3

// Config tunes a Service.
type Config struct {
	TopK         int
	RoleTemplate string        // empty = grounding.DefaultAssistantTemplate
	CallTimeout  time.Duration // per provider call, 0 = caller context only
	Observer     Observer      // optional
}

// Service runs one retrieval-augmented answer per query.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	jurisdictions domain.JurisdictionTable
	embed         Embedder
	corpus        CorpusLoader
	gen           Generator
	topK          int
	template      string
	callTimeout   time.Duration
	observer      Observer
	logger        *zap.Logger
}

// New creates a retrieval service. All collaborators are required.
func New(
	jurisdictions domain.JurisdictionTable,
	embed Embedder,
	corpus CorpusLoader,
	gen Generator,
	cfg Config,
	log *zap.Logger,
) (*Service, error) {
	switch {
	case jurisdictions.Len() == 0:
		return nil, errors.New("retrieval: at least one jurisdiction is required")
	case embed == nil:
		return nil, errors.New("retrieval: embedder is required")
	case corpus == nil:
		return nil, errors.New("retrieval: corpus loader is required")
	case gen == nil:
		return nil, errors.New("retrieval: generator is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.RoleTemplate == "" {
		cfg.RoleTemplate = grounding.DefaultAssistantTemplate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		jurisdictions: jurisdictions,
		embed:         embed,
		corpus:        corpus,
		gen:           gen,
		topK:          cfg.TopK,
		template:      cfg.RoleTemplate,
		callTimeout:   cfg.CallTimeout,
		observer:      cfg.Observer,
		logger:        log,
	}, nil
}

// Jurisdictions returns the configured jurisdiction names in sorted order.
func (s *Service) Jurisdictions() []string {
	return s.jurisdictions.Names()
}

// answer is the success payload of run.
type answer struct {
	text    string
	matches domain.MatchResult
}

// HandleQuery answers query against the jurisdiction's corpus. It never panics
// and never returns an error: every failure becomes a Failed outcome.
func (s *Service) HandleQuery(ctx context.Context, query, jurisdiction string) (out domain.Outcome) {
	start := time.Now()
	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("run_id", uuid.NewString()),
		zap.String("jurisdiction", jurisdiction),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Retrieval run panicked", zap.Any("panic", r), zap.Stack("stack"))
			out = domain.Failed(domain.KindUnexpected, unexpectedMessage)
		}
		if s.observer != nil {
			s.observer.ObserveQuery(jurisdiction, out, time.Since(start))
		}
	}()

	ans, err := s.run(logger.ContextWithLogger(ctx, log), query, jurisdiction)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return s.fail(ctx, log, jurisdiction, err, time.Since(start))
	}

	log.Info("Query answered",
		zap.Int("matches", len(ans.matches)),
		zap.Duration("duration", time.Since(start)),
	)
	return domain.Succeeded(ans.text, ans.matches)
}

func (s *Service) fail(ctx context.Context, log *zap.Logger, jurisdiction string, err error, elapsed time.Duration) domain.Outcome {
	kind := domain.Classify(err)
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		kind = domain.KindCanceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = domain.KindDeadlineExceeded
	}

	fields := []zap.Field{zap.String("kind", string(kind)), zap.Duration("duration", elapsed), zap.Error(err)}
	switch {
	case kind == domain.KindDataIntegrity || kind == domain.KindUnexpected:
		log.Error("Query failed", append(fields, zap.Stack("stack"))...)
	case kind.IsUserError() || kind == domain.KindCanceled:
		log.Info("Query rejected", fields...)
	default:
		log.Warn("Query failed", fields...)
	}
	return domain.Failed(kind, s.userMessage(kind, jurisdiction, err))
}

// run walks ValidateJurisdiction, EmbedQuery, LoadCorpus, ValidateRowCounts,
// Rank, Assemble and Generate in order. The first error ends the run.
func (s *Service) run(ctx context.Context, query, jurisdiction string) (answer, error) {
	j, err := s.jurisdictions.Lookup(jurisdiction)
	if err != nil {
		return answer{}, err
	}
	if strings.TrimSpace(query) == "" {
		return answer{}, fmt.Errorf("%w: query is empty", domain.ErrInvalidQuery)
	}

	var emb domain.EmbeddingResult
	err = s.withCallTimeout(ctx, func(callCtx context.Context) (callErr error) {
		emb, callErr = s.embed.Embed(callCtx, query)
		return callErr
	})
	if err != nil {
		return answer{}, fmt.Errorf("embed query: %w", err)
	}

	corpus, err := s.corpus.Load(ctx, j.CorpusLocator)
	if err != nil {
		return answer{}, fmt.Errorf("load corpus: %w", err)
	}
	if err := corpus.ValidateRowCounts(); err != nil {
		return answer{}, fmt.Errorf("corpus %s: %w", j.CorpusLocator, err)
	}

	ranked, err := ranking.Rank(emb.Embedding, corpus.Embeddings, s.topK)
	if err != nil {
		return answer{}, fmt.Errorf("rank corpus %s: %w", j.CorpusLocator, err)
	}

	persona := grounding.Persona{RoleDescription: j.RoleDescription, Template: s.template}
	matches, messages, err := grounding.Assemble(ranked, corpus.Records, persona, query)
	if err != nil {
		return answer{}, fmt.Errorf("assemble context: %w", err)
	}

	var gen domain.GenerationResult
	err = s.withCallTimeout(ctx, func(callCtx context.Context) (callErr error) {
		gen, callErr = s.gen.Generate(callCtx, messages)
		return callErr
	})
	if err != nil {
		return answer{}, fmt.Errorf("generate answer: %w", err)
	}

	logger.FromContext(ctx).Debug("Generation finished",
		zap.Int("prompt_tokens", gen.PromptTokens),
		zap.Int("completion_tokens", gen.CompletionTokens),
	)
	return answer{text: gen.Text, matches: matches}, nil
}

// withCallTimeout bounds one provider call. A call that fails after its own
// deadline passed is reported as ErrProviderTimeout even if the provider
// adapter did not classify it.
func (s *Service) withCallTimeout(ctx context.Context, call func(context.Context) error) error {
	if s.callTimeout <= 0 {
		return call(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	err := call(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) &&
		!errors.Is(err, domain.ErrProviderTimeout) {
		return fmt.Errorf("%w after %s: %w", domain.ErrProviderTimeout, s.callTimeout, err)
	}
	return err
}
