package corpus

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/metrics"
)

// source is the consumer interface wrapped by Cache.
type source interface {
	Load(ctx context.Context, locator string) (domain.Corpus, error)
}

type cacheEntry struct {
	corpus   domain.Corpus
	loadedAt time.Time
}

// Cache memoizes corpora per locator. At most one load per locator is in
// flight; concurrent callers share its result. Published entries are
// immutable and must not be modified by callers. Failures are never cached.
type Cache struct {
	inner source
	ttl   time.Duration // 0 = entries never expire
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCache wraps inner with a per-locator cache.
func NewCache(inner source, ttl time.Duration) *Cache {
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the cached corpus or loads it once for all concurrent callers.
// A caller whose context ends stops waiting; the shared load continues for the others.
func (c *Cache) Load(ctx context.Context, locator string) (domain.Corpus, error) {
	if corpus, ok := c.lookup(locator); ok {
		metrics.CorpusCacheTotal.WithLabelValues("hit").Inc()
		return corpus, nil
	}
	metrics.CorpusCacheTotal.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(locator, func() (any, error) {
		if corpus, ok := c.lookup(locator); ok {
			return corpus, nil
		}
		corpus, err := c.inner.Load(context.WithoutCancel(ctx), locator)
		if err != nil {
			return domain.Corpus{}, err
		}
		c.mu.Lock()
		c.entries[locator] = cacheEntry{corpus: corpus, loadedAt: c.now()}
		c.mu.Unlock()
		return corpus, nil
	})

	select {
	case <-ctx.Done():
		return domain.Corpus{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Corpus{}, res.Err
		}
		return res.Val.(domain.Corpus), nil
	}
}

// Invalidate drops the cached entry for locator.
func (c *Cache) Invalidate(locator string) {
	c.mu.Lock()
	delete(c.entries, locator)
	c.mu.Unlock()
}

func (c *Cache) lookup(locator string) (domain.Corpus, bool) {
	c.mu.RLock()
	e, ok := c.entries[locator]
	c.mu.RUnlock()
	if !ok {
		return domain.Corpus{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.loadedAt) >= c.ttl {
		return domain.Corpus{}, false
	}
	return e.corpus, true
}
