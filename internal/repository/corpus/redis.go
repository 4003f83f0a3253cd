package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/lexai/internal/db"
	"github.com/kailas-cloud/lexai/internal/domain"
)

// kvGetter is the read side of the key-value store (ISP).
type kvGetter interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// kvSetter is the write side used by Writer.
type kvSetter interface {
	Set(ctx context.Context, key string, value []byte) error
}

type kvStore interface {
	kvGetter
	kvSetter
}

func loadRedis(ctx context.Context, kv kvGetter, loc Locator) (domain.Corpus, error) {
	if kv == nil {
		return domain.Corpus{}, fmt.Errorf("corpus %s: redis store is not configured", loc.Raw)
	}
	data, err := kv.Get(ctx, loc.Target)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Corpus{}, &NotFoundError{Locator: loc.Raw}
		}
		return domain.Corpus{}, fmt.Errorf("read corpus %s: %w", loc.Raw, err)
	}
	return decodePayload(loc.Raw, bytes.NewReader(data))
}

func writeRedis(ctx context.Context, kv kvSetter, loc Locator, c domain.Corpus) error {
	if kv == nil {
		return fmt.Errorf("corpus %s: redis store is not configured", loc.Raw)
	}
	var buf bytes.Buffer
	if err := encodePayload(&buf, c); err != nil {
		return err
	}
	if err := kv.Set(ctx, loc.Target, buf.Bytes()); err != nil {
		return fmt.Errorf("write corpus %s: %w", loc.Raw, err)
	}
	return nil
}
