package domain

import (
	"context"
	"errors"
)

var (
	// ErrInvalidJurisdiction signals a jurisdiction selector absent from the configuration table.
	ErrInvalidJurisdiction = errors.New("invalid jurisdiction")
	// ErrInvalidQuery signals a blank query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrCorpusNotFound signals a corpus resource missing at its configured location.
	ErrCorpusNotFound = errors.New("corpus not found")
	// ErrCorpusSchema signals a corpus resource without one of the required fields.
	ErrCorpusSchema = errors.New("corpus schema error")
	// ErrDataIntegrity signals a row-count mismatch or an out-of-range match index.
	ErrDataIntegrity = errors.New("data integrity error")
	// ErrDimensionMismatch signals a query vector whose width differs from the corpus.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrProviderAuth signals rejected provider credentials.
	ErrProviderAuth = errors.New("provider authentication failed")
	// ErrProvider signals any other embedding or generation provider failure.
	ErrProvider = errors.New("provider error")
	// ErrProviderTimeout signals a provider call that exceeded its bound.
	ErrProviderTimeout = errors.New("provider timeout")
)

// ErrorKind is the failure taxonomy exposed across the orchestration boundary.
type ErrorKind string

// Error kinds, stable strings used in API responses and metrics labels.
const (
	KindInvalidJurisdiction ErrorKind = "invalid_jurisdiction"
	KindInvalidQuery        ErrorKind = "invalid_query"
	KindNotFound            ErrorKind = "not_found"
	KindSchema              ErrorKind = "schema"
	KindDataIntegrity       ErrorKind = "data_integrity"
	KindDimensionMismatch   ErrorKind = "dimension_mismatch"
	KindProviderAuth        ErrorKind = "provider_auth"
	KindProvider            ErrorKind = "provider_error"
	KindProviderTimeout     ErrorKind = "provider_timeout"
	KindCanceled            ErrorKind = "canceled"
	KindDeadlineExceeded    ErrorKind = "deadline_exceeded"
	KindUnexpected          ErrorKind = "unexpected"
)

// kindSentinels is ordered: the first match wins. Auth and timeout come before
// the generic provider error because transports wrap both.
var kindSentinels = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidJurisdiction, KindInvalidJurisdiction},
	{ErrInvalidQuery, KindInvalidQuery},
	{ErrCorpusNotFound, KindNotFound},
	{ErrCorpusSchema, KindSchema},
	{ErrDataIntegrity, KindDataIntegrity},
	{ErrDimensionMismatch, KindDimensionMismatch},
	{ErrProviderAuth, KindProviderAuth},
	{ErrProviderTimeout, KindProviderTimeout},
	{ErrProvider, KindProvider},
	{context.Canceled, KindCanceled},
	{context.DeadlineExceeded, KindDeadlineExceeded},
}

// Classify maps an error chain onto its ErrorKind. Unknown errors are KindUnexpected.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindUnexpected
}

// IsUserError reports whether the kind stems from caller input rather than data or providers.
func (k ErrorKind) IsUserError() bool {
	return k == KindInvalidJurisdiction || k == KindInvalidQuery
}
