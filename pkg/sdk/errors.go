package lexai

import "github.com/kailas-cloud/lexai/internal/domain"

// ErrorKind classifies a failed Outcome.
type ErrorKind = domain.ErrorKind

// Failure kinds re-exported from the domain layer.
const (
	KindInvalidJurisdiction = domain.KindInvalidJurisdiction
	KindInvalidQuery        = domain.KindInvalidQuery
	KindNotFound            = domain.KindNotFound
	KindSchema              = domain.KindSchema
	KindDataIntegrity       = domain.KindDataIntegrity
	KindDimensionMismatch   = domain.KindDimensionMismatch
	KindProviderAuth        = domain.KindProviderAuth
	KindProvider            = domain.KindProvider
	KindProviderTimeout     = domain.KindProviderTimeout
	KindCanceled            = domain.KindCanceled
	KindDeadlineExceeded    = domain.KindDeadlineExceeded
	KindUnexpected          = domain.KindUnexpected
)

// Sentinel errors a custom Embedder or Generator should wrap so that failures
// are classified. Use errors.Is() to check.
var (
	ErrProviderAuth    = domain.ErrProviderAuth
	ErrProvider        = domain.ErrProvider
	ErrProviderTimeout = domain.ErrProviderTimeout
)
