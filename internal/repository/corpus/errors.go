package corpus

import (
	"fmt"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// NotFoundError reports a locator that does not resolve to an existing resource.
type NotFoundError struct {
	Locator string
	Err     error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corpus not found at %s: %v", e.Locator, e.Err)
	}
	return "corpus not found at " + e.Locator
}

// Unwrap lets errors.Is match domain.ErrCorpusNotFound.
func (e *NotFoundError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrCorpusNotFound}
	}
	return []error{domain.ErrCorpusNotFound, e.Err}
}

// SchemaError reports a corpus resource lacking one of the required fields.
type SchemaError struct {
	Locator string
	Field   string
	Reason  string // empty when the field is absent
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("corpus %s: field %q %s", e.Locator, e.Field, e.Reason)
	}
	return fmt.Sprintf("corpus %s: missing required field %q", e.Locator, e.Field)
}

// Unwrap lets errors.Is match domain.ErrCorpusSchema.
func (e *SchemaError) Unwrap() error { return domain.ErrCorpusSchema }
