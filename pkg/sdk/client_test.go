package lexai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/repository/corpus"
)

const boulderRole = "You are an expert in the municipal code of Boulder, Colorado."

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boulder.json.gz")
	c := domain.Corpus{
		Embeddings: [][]float32{{0, 1}, {1, 0}, {0.9, 0.1}},
		Records: []domain.DocumentRecord{
			{URL: "u0", Title: "Parking", Content: "Two hour limit."},
			{URL: "u1", Title: "Animals", Subtitle: "6-1-16", Content: "Dogs must be on a leash."},
			{URL: "u2", Title: "Animals", Subtitle: "6-1-18", Content: "Dogs may not enter parks."},
		},
	}
	if err := corpus.NewWriter().Save(context.Background(), path, c); err != nil {
		t.Fatal(err)
	}
	return path
}

// dogEmbedder embeds texts mentioning dogs to [1,0], everything else to [0,1].
func dogEmbedder() *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, text string) (EmbeddingResult, error) {
		if strings.Contains(strings.ToLower(text), "dog") {
			return EmbeddingResult{Embedding: []float32{1, 0}}, nil
		}
		return EmbeddingResult{Embedding: []float32{0, 1}}, nil
	}}
}

func answering(text string) *mockGenerator {
	return &mockGenerator{fn: func(context.Context, []Message) (string, error) { return text, nil }}
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithJurisdiction("Boulder", writeCorpus(t), boulderRole),
		WithEmbedder(dogEmbedder()),
	}
	c, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoJurisdiction(t *testing.T) {
	_, err := New(context.Background(), WithEmbedder(dogEmbedder()), WithGenerator(answering("x")))
	if err == nil {
		t.Fatal("expected error when no jurisdiction is configured")
	}
}

func TestNew_OpenAIWithoutKey(t *testing.T) {
	_, err := New(context.Background(), WithJurisdiction("Boulder", "b.json", boulderRole))
	if err == nil {
		t.Fatal("expected error for the default provider without an API key")
	}
}

func TestAsk(t *testing.T) {
	gen := answering("Yes, on a leash.")
	c := newTestClient(t, WithGenerator(gen), WithTopK(2))

	out := c.Ask(context.Background(), "Can I walk my dog?", "Boulder")
	if !out.OK() {
		t.Fatalf("expected success, got %+v", out.Failure)
	}
	if out.Response != "Yes, on a leash." {
		t.Errorf("Response = %q", out.Response)
	}
	if len(out.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(out.Matches))
	}
	if out.Matches[0].Rank != 1 || out.Matches[0].Record.Subtitle != "6-1-16" {
		t.Errorf("unexpected best match: %+v", out.Matches[0])
	}
	if out.Matches[1].Record.Subtitle != "6-1-18" {
		t.Errorf("unexpected second match: %+v", out.Matches[1])
	}

	if len(gen.calls) != 1 {
		t.Fatalf("expected 1 generator call, got %d", len(gen.calls))
	}
	msgs := gen.calls[0]
	if msgs[0].Role != domain.RoleSystem || !strings.Contains(msgs[0].Content, "Boulder") {
		t.Errorf("unexpected persona message: %+v", msgs[0])
	}
	last := msgs[len(msgs)-1]
	if last.Role != domain.RoleUser || last.Content != "Can I walk my dog?" {
		t.Errorf("unexpected final message: %+v", last)
	}
}

func TestAsk_UnknownJurisdiction(t *testing.T) {
	gen := answering("x")
	c := newTestClient(t, WithGenerator(gen))

	out := c.Ask(context.Background(), "q", "Atlantis")
	if out.OK() || out.Failure.Kind != KindInvalidJurisdiction {
		t.Fatalf("expected invalid jurisdiction, got %+v", out)
	}
	if !strings.Contains(out.Failure.Message, "Boulder") {
		t.Errorf("message should list valid jurisdictions: %q", out.Failure.Message)
	}
	if out.Matches != nil {
		t.Errorf("failed outcome carries matches: %v", out.Matches)
	}
	if len(gen.calls) != 0 {
		t.Error("generator called for an unknown jurisdiction")
	}
}

func TestAsk_GeneratorAuthFailure(t *testing.T) {
	gen := &mockGenerator{fn: func(context.Context, []Message) (string, error) {
		return "", fmt.Errorf("chat: %w", ErrProviderAuth)
	}}
	c := newTestClient(t, WithGenerator(gen))

	out := c.Ask(context.Background(), "dog rules", "Boulder")
	if out.OK() || out.Failure.Kind != KindProviderAuth {
		t.Fatalf("expected provider_auth, got %+v", out)
	}
}

func TestAsk_UnclassifiedEmbedderError(t *testing.T) {
	emb := &mockEmbedder{fn: func(context.Context, string) (EmbeddingResult, error) {
		return EmbeddingResult{}, errors.New("boom")
	}}
	c, err := New(context.Background(),
		WithJurisdiction("Boulder", writeCorpus(t), boulderRole),
		WithEmbedder(emb), WithGenerator(answering("x")),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	out := c.Ask(context.Background(), "q", "Boulder")
	if out.OK() || out.Failure.Kind != KindUnexpected {
		t.Fatalf("expected unexpected, got %+v", out)
	}
}

func TestAsk_ObservedByLoggerAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := prometheus.NewRegistry()

	c := newTestClient(t, WithGenerator(answering("ok")), WithLogger(logger), WithPrometheus(reg))
	c.Ask(context.Background(), "dogs", "Boulder")
	c.Ask(context.Background(), "   ", "Boulder")

	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatal(err)
	}
	if v := testutil.ToFloat64(obs.metrics.questions.WithLabelValues("Boulder", "ok", "")); v != 1 {
		t.Errorf("ok questions = %v, want 1", v)
	}
	if v := testutil.ToFloat64(obs.metrics.questions.WithLabelValues("Boulder", "failed", "invalid_query")); v != 1 {
		t.Errorf("failed questions = %v, want 1", v)
	}

	logs := buf.String()
	if !strings.Contains(logs, "question answered") || !strings.Contains(logs, "question failed") {
		t.Errorf("missing log lines:\n%s", logs)
	}
}

func TestJurisdictions_Sorted(t *testing.T) {
	path := writeCorpus(t)
	c, err := New(context.Background(),
		WithJurisdiction("Denver", path, "Denver persona."),
		WithJurisdiction("Boulder", path, boulderRole),
		WithEmbedder(dogEmbedder()), WithGenerator(answering("x")),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	got := c.Jurisdictions()
	if len(got) != 2 || got[0] != "Boulder" || got[1] != "Denver" {
		t.Errorf("Jurisdictions = %v", got)
	}
}

func TestHealth(t *testing.T) {
	gen := answering("x")
	gen.healthFn = func(context.Context) error { return errors.New("down") }
	c := newTestClient(t, WithGenerator(gen))

	h := c.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", h.Status)
	}
	if h.Checks["embedding"] != "ok" || h.Checks["generation"] != "error" {
		t.Errorf("unexpected checks: %v", h.Checks)
	}
}

func TestClientOptions(t *testing.T) {
	cc := &clientConfig{}
	for _, o := range []Option{
		WithOpenAI("sk-test", "http://proxy"),
		WithModels("emb", "chat"),
		WithTopK(5),
		WithCallTimeout(1500 * time.Millisecond),
		WithCorpusCache(time.Minute),
		WithRedis("localhost:6379", "pw"),
		WithSQL("sqlite", "file:corpus.db"),
	} {
		o.apply(cc)
	}

	p := cc.cfg.Providers
	if p.Embedding.APIKey != "sk-test" || p.Generation.BaseURL != "http://proxy" {
		t.Errorf("openai options not applied: %+v", p)
	}
	if p.Embedding.Model != "emb" || p.Generation.Model != "chat" {
		t.Errorf("models not applied: %+v", p)
	}
	if cc.cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d", cc.cfg.Retrieval.TopK)
	}
	if p.CallTimeoutSec != 2 {
		t.Errorf("CallTimeoutSec = %d, want 2", p.CallTimeoutSec)
	}
	if !cc.cfg.Corpus.Cache.Enabled || cc.cfg.Corpus.Cache.TTLSec != 60 {
		t.Errorf("corpus cache = %+v", cc.cfg.Corpus.Cache)
	}
	if cc.cfg.Cache.Redis.Addrs[0] != "localhost:6379" || cc.cfg.Corpus.SQL.Driver != "sqlite" {
		t.Errorf("backends not applied: %+v %+v", cc.cfg.Cache, cc.cfg.Corpus.SQL)
	}
}

func TestWithOllama(t *testing.T) {
	cc := &clientConfig{}
	WithOllama("http://gpu:11434", "nomic-embed-text", "llama3").apply(cc)

	p := cc.cfg.Providers
	if p.Embedding.Kind != "ollama" || p.Embedding.Model != "nomic-embed-text" {
		t.Errorf("embedding = %+v", p.Embedding)
	}
	if p.Generation.Kind != "ollama" || p.Generation.BaseURL != "http://gpu:11434" || p.Generation.Model != "llama3" {
		t.Errorf("generation = %+v", p.Generation)
	}
}

func TestRegisterOrReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newSDKMetrics(reg)
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if a.questions != b.questions {
		t.Error("expected the existing collector to be reused")
	}
}

func TestObserver_Nil(t *testing.T) {
	var o *observer
	o.ObserveQuery("Boulder", domain.Succeeded("x", nil), time.Second)
}

func TestEmbedderAdapter_BatchEmbed(t *testing.T) {
	a := &embedderAdapter{inner: dogEmbedder()}
	res, err := a.BatchEmbed(context.Background(), []string{"dog", "cat"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Embeddings) != 2 || res.Embeddings[0][0] != 1 || res.Embeddings[1][1] != 1 {
		t.Errorf("unexpected embeddings: %v", res.Embeddings)
	}
	if err := a.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check should be healthy: %v", err)
	}
}

func TestOutcomeFromDomain(t *testing.T) {
	failed := outcomeFromDomain(domain.Failed(domain.KindNotFound, "missing"))
	if failed.OK() || failed.Failure.Kind != KindNotFound || failed.Failure.Message != "missing" || failed.Matches != nil {
		t.Errorf("unexpected failed outcome: %+v", failed)
	}

	ok := outcomeFromDomain(domain.Succeeded("a", domain.MatchResult{
		{Rank: 1, Index: 4, Distance: 0.25, Record: domain.DocumentRecord{URL: "u", Title: "T"}},
	}))
	if !ok.OK() || ok.Matches[0].Distance != 0.25 || ok.Matches[0].Record.URL != "u" {
		t.Errorf("unexpected ok outcome: %+v", ok)
	}
}
