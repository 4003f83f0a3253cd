package retrieval

import (
	"context"
	"time"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Embedder vectorizes the user query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the answer from the assembled messages.
type Generator interface {
	Generate(ctx context.Context, messages []domain.Message) (domain.GenerationResult, error)
}

// CorpusLoader resolves a jurisdiction's corpus locator.
type CorpusLoader interface {
	Load(ctx context.Context, locator string) (domain.Corpus, error)
}

// Observer receives one notification per finished run.
type Observer interface {
	ObserveQuery(jurisdiction string, outcome domain.Outcome, elapsed time.Duration)
}
