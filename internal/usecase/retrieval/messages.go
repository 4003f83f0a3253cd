package retrieval

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lexai/internal/domain"
)

const unexpectedMessage = "Something went wrong while answering your question. Please try again later."

// userMessage renders the human-readable failure text for a kind.
func (s *Service) userMessage(kind domain.ErrorKind, jurisdiction string, err error) string {
	switch kind {
	case domain.KindInvalidJurisdiction:
		return fmt.Sprintf("Unknown jurisdiction %q. Choose one of: %s.",
			jurisdiction, strings.Join(s.jurisdictions.Names(), ", "))
	case domain.KindInvalidQuery:
		return "Please enter a question."
	case domain.KindNotFound:
		return fmt.Sprintf("Reference documents for %s are unavailable: %v", jurisdiction, err)
	case domain.KindSchema, domain.KindDataIntegrity:
		return fmt.Sprintf("Reference documents for %s are corrupt or incompatible: %v", jurisdiction, err)
	case domain.KindDimensionMismatch:
		return fmt.Sprintf("The query embedding does not fit the %s corpus. "+
			"Check that the embedding model matches the one used to build it: %v", jurisdiction, err)
	case domain.KindProviderAuth:
		return "The model provider rejected the configured credentials. " +
			"Check the API key in the provider configuration (providers.*.api_key or OPENAI_API_KEY)."
	case domain.KindProvider:
		return fmt.Sprintf("The model provider returned an error: %v", err)
	case domain.KindProviderTimeout:
		return "The model provider did not respond in time. You can retry the request."
	case domain.KindCanceled:
		return "The request was cancelled."
	case domain.KindDeadlineExceeded:
		return "The request ran out of time before an answer was ready. You can retry the request."
	default:
		return unexpectedMessage
	}
}
