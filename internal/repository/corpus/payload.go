package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Field names of the corpus payload, in the order they are checked.
const (
	FieldEmbeddings = "embeddings"
	FieldURLs       = "urls"
	FieldTitles     = "titles"
	FieldSubtitles  = "subtitles"
	FieldContents   = "contents"
)

// RequiredFields lists every field a corpus resource must carry.
var RequiredFields = []string{FieldEmbeddings, FieldURLs, FieldTitles, FieldSubtitles, FieldContents}

// payload is the columnar wire shape shared by file and redis:// corpora.
type payload struct {
	Embeddings [][]float32 `json:"embeddings"`
	URLs       []string    `json:"urls"`
	Titles     []string    `json:"titles"`
	Subtitles  []string    `json:"subtitles"`
	Contents   []string    `json:"contents"`
}

// decodePayload parses a columnar JSON corpus. A field that is absent or null
// is a SchemaError naming it.
func decodePayload(locator string, r io.Reader) (domain.Corpus, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return domain.Corpus{}, fmt.Errorf("corpus %s: decode payload: %w: %w", locator, domain.ErrCorpusSchema, err)
	}

	var p payload
	targets := map[string]any{
		FieldEmbeddings: &p.Embeddings,
		FieldURLs:       &p.URLs,
		FieldTitles:     &p.Titles,
		FieldSubtitles:  &p.Subtitles,
		FieldContents:   &p.Contents,
	}
	for _, field := range RequiredFields {
		msg, ok := raw[field]
		if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
			return domain.Corpus{}, &SchemaError{Locator: locator, Field: field}
		}
		if err := json.Unmarshal(msg, targets[field]); err != nil {
			return domain.Corpus{}, &SchemaError{Locator: locator, Field: field, Reason: "is malformed: " + err.Error()}
		}
	}

	records, err := zipRecords(p.URLs, p.Titles, p.Subtitles, p.Contents)
	if err != nil {
		return domain.Corpus{}, fmt.Errorf("corpus %s: %w", locator, err)
	}
	return domain.Corpus{Embeddings: p.Embeddings, Records: records}, nil
}

// zipRecords joins the four metadata columns. Columns of unequal length cannot
// be aligned positionally and are reported as a data integrity failure.
func zipRecords(urls, titles, subtitles, contents []string) ([]domain.DocumentRecord, error) {
	n := len(urls)
	if len(titles) != n || len(subtitles) != n || len(contents) != n {
		return nil, fmt.Errorf("%w: metadata columns disagree (urls=%d titles=%d subtitles=%d contents=%d)",
			domain.ErrDataIntegrity, len(urls), len(titles), len(subtitles), len(contents))
	}
	records := make([]domain.DocumentRecord, n)
	for i := range n {
		records[i] = domain.DocumentRecord{
			URL:      urls[i],
			Title:    titles[i],
			Subtitle: subtitles[i],
			Content:  contents[i],
		}
	}
	return records, nil
}

// encodePayload writes a corpus in the columnar JSON shape read by decodePayload.
func encodePayload(w io.Writer, c domain.Corpus) error {
	p := payload{
		Embeddings: c.Embeddings,
		URLs:       make([]string, len(c.Records)),
		Titles:     make([]string, len(c.Records)),
		Subtitles:  make([]string, len(c.Records)),
		Contents:   make([]string, len(c.Records)),
	}
	if p.Embeddings == nil {
		p.Embeddings = [][]float32{}
	}
	for i, r := range c.Records {
		p.URLs[i] = r.URL
		p.Titles[i] = r.Title
		p.Subtitles[i] = r.Subtitle
		p.Contents[i] = r.Content
	}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}
	return nil
}
