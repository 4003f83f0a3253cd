// Package corpus reads and writes jurisdiction corpora from files, Redis keys
// and SQL tables.
package corpus

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

// Loader resolves a locator to a corpus. It keeps no state between calls.
type Loader struct {
	kv        kvGetter
	sqlDB     *sql.DB
	sqlDriver string
	logger    *zap.Logger
}

// Option configures a Loader or Writer backend.
type Option func(*backends)

type backends struct {
	kv        kvStore
	sqlDB     *sql.DB
	sqlDriver string
}

// WithKV enables redis:// locators.
func WithKV(kv kvStore) Option {
	return func(b *backends) { b.kv = kv }
}

// WithSQL enables sql:// locators.
func WithSQL(conn *sql.DB, driver string) Option {
	return func(b *backends) {
		b.sqlDB = conn
		b.sqlDriver = driver
	}
}

func applyOptions(opts []Option) backends {
	var b backends
	for _, o := range opts {
		o(&b)
	}
	return b
}

// NewLoader creates a Loader. File locators always work; redis:// and sql://
// need the matching option.
func NewLoader(logger *zap.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := applyOptions(opts)
	l := &Loader{sqlDB: b.sqlDB, sqlDriver: b.sqlDriver, logger: logger}
	if b.kv != nil {
		l.kv = b.kv
	}
	return l
}

// Load reads the corpus at locator. It checks that all five fields exist but
// leaves the row-count comparison between embeddings and records to the caller.
func (l *Loader) Load(ctx context.Context, locator string) (domain.Corpus, error) {
	loc, err := ParseLocator(locator)
	if err != nil {
		return domain.Corpus{}, &NotFoundError{Locator: locator, Err: err}
	}

	start := time.Now()
	var c domain.Corpus
	switch loc.Scheme {
	case SchemeRedis:
		c, err = loadRedis(ctx, l.kv, loc)
	case SchemeSQL:
		c, err = loadSQL(ctx, l.sqlDB, loc)
	default:
		c, err = loadFile(loc)
	}
	duration := time.Since(start)

	source := string(loc.Scheme)
	metrics.CorpusLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		metrics.CorpusLoadsTotal.WithLabelValues(source, string(domain.Classify(err))).Inc()
		return domain.Corpus{}, err
	}
	metrics.CorpusLoadsTotal.WithLabelValues(source, "ok").Inc()

	l.logger.Debug("Corpus loaded",
		zap.String("locator", locator),
		zap.Int("rows", c.Rows()),
		zap.Int("dimensions", c.Dimensions()),
		zap.Duration("duration", duration),
	)
	return c, nil
}
