package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// Writer persists corpora built by the indexer.
type Writer struct {
	kv        kvSetter
	sqlDB     *sql.DB
	sqlDriver string
}

// NewWriter creates a Writer with the same backend options as NewLoader.
func NewWriter(opts ...Option) *Writer {
	b := applyOptions(opts)
	w := &Writer{sqlDB: b.sqlDB, sqlDriver: b.sqlDriver}
	if b.kv != nil {
		w.kv = b.kv
	}
	return w
}

// Save replaces whatever is stored at locator with c.
func (w *Writer) Save(ctx context.Context, locator string, c domain.Corpus) error {
	if err := c.ValidateRowCounts(); err != nil {
		return err
	}
	loc, err := ParseLocator(locator)
	if err != nil {
		return fmt.Errorf("save corpus: %w", err)
	}
	switch loc.Scheme {
	case SchemeRedis:
		return writeRedis(ctx, w.kv, loc, c)
	case SchemeSQL:
		return writeSQL(ctx, w.sqlDB, w.sqlDriver, loc, c)
	default:
		return writeFile(loc, c)
	}
}
