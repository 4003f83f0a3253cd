// Package indexing builds jurisdiction corpora from document records.
package indexing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Stats summarizes one indexing run.
type Stats struct {
	Records     int
	Skipped     int
	Dimensions  int
	TotalTokens int
	Duration    time.Duration
}

// Service embeds document contents and writes the resulting corpus.
type Service struct {
	embed  BatchEmbedder
	writer CorpusWriter
	logger *zap.Logger
}

// New creates an indexing service.
func New(embed BatchEmbedder, writer CorpusWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, writer: writer, logger: logger}
}

// DecodeRecords reads a JSON array of {url,title,subtitle,content} objects.
func DecodeRecords(r io.Reader) ([]domain.DocumentRecord, error) {
	var records []domain.DocumentRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// Build embeds every record with non-blank content, in input order.
// Records with blank content are dropped and counted in Stats.Skipped.
func (s *Service) Build(ctx context.Context, records []domain.DocumentRecord) (domain.Corpus, Stats, error) {
	start := time.Now()
	stats := Stats{}

	kept := make([]domain.DocumentRecord, 0, len(records))
	texts := make([]string, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Content) == "" {
			stats.Skipped++
			continue
		}
		kept = append(kept, rec)
		texts = append(texts, rec.Content)
	}
	if stats.Skipped > 0 {
		s.logger.Warn("Skipping records without content", zap.Int("skipped", stats.Skipped))
	}
	if len(kept) == 0 {
		return domain.Corpus{}, stats, errors.New("no records with content to index")
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.Corpus{}, stats, fmt.Errorf("embed contents: %w", err)
	}
	if len(res.Embeddings) != len(kept) {
		return domain.Corpus{}, stats, fmt.Errorf("%w: %d vectors for %d records",
			domain.ErrProvider, len(res.Embeddings), len(kept))
	}

	dim := len(res.Embeddings[0])
	for i, v := range res.Embeddings {
		if len(v) != dim || dim == 0 {
			return domain.Corpus{}, stats, fmt.Errorf("%w: record %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	stats.Records = len(kept)
	stats.Dimensions = dim
	stats.TotalTokens = res.TotalTokens
	stats.Duration = time.Since(start)
	return domain.Corpus{Embeddings: res.Embeddings, Records: kept}, stats, nil
}

// Index builds a corpus from records and saves it at locator.
func (s *Service) Index(ctx context.Context, records []domain.DocumentRecord, locator string) (Stats, error) {
	start := time.Now()
	c, stats, err := s.Build(ctx, records)
	if err != nil {
		return stats, err
	}
	if err := s.writer.Save(ctx, locator, c); err != nil {
		return stats, fmt.Errorf("save corpus %s: %w", locator, err)
	}
	stats.Duration = time.Since(start)

	s.logger.Info("Corpus indexed",
		zap.String("locator", locator),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped),
		zap.Int("dimensions", stats.Dimensions),
		zap.Int("total_tokens", stats.TotalTokens),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}
