package indexing

import (
	"context"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// BatchEmbedder vectorizes document contents.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// CorpusWriter persists a corpus at a locator.
type CorpusWriter interface {
	Save(ctx context.Context, locator string, c domain.Corpus) error
}
