package domain

import "fmt"

// DocumentRecord is one corpus entry, positionally aligned with a corpus matrix row.
type DocumentRecord struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
}

// Corpus is the embedding matrix and metadata of one jurisdiction.
// Row i of Embeddings and Records[i] describe the same chunk.
type Corpus struct {
	Embeddings [][]float32
	Records    []DocumentRecord
}

// Rows returns the number of embedding rows.
func (c Corpus) Rows() int { return len(c.Embeddings) }

// Dimensions returns the width of the first row, or 0 for an empty corpus.
func (c Corpus) Dimensions() int {
	if len(c.Embeddings) == 0 {
		return 0
	}
	return len(c.Embeddings[0])
}

// ValidateRowCounts enforces the 1:1 correspondence between rows and records.
// An empty corpus with no records is valid.
func (c Corpus) ValidateRowCounts() error {
	if len(c.Records) != len(c.Embeddings) {
		return fmt.Errorf("%w: %d embeddings but %d metadata records",
			ErrDataIntegrity, len(c.Embeddings), len(c.Records))
	}
	return nil
}
