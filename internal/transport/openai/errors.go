package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/lexai/internal/domain"
)

// classifyError maps a go-openai error onto the domain provider taxonomy.
// 401 and 403 become ErrProviderAuth, a blown deadline becomes ErrProviderTimeout,
// caller cancellation stays context.Canceled, and the rest wrap ErrProvider with
// the provider's own message preserved.
func classifyError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrProviderTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	}

	status, detail := apiErrorDetail(err)
	wrap := domain.ErrProvider
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		wrap = domain.ErrProviderAuth
	}
	if status != 0 {
		return fmt.Errorf("%s API error %d: %s: %w", op, status, detail, wrap)
	}
	return fmt.Errorf("%s request failed: %s: %w", op, err.Error(), wrap)
}

func apiErrorDetail(err error) (int, string) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, apiErr.Message
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return reqErr.HTTPStatusCode, detail
		}
		return reqErr.HTTPStatusCode, string(reqErr.Body)
	}
	return 0, ""
}

// extractDetail extracts the "detail" field from a JSON error body used by
// some OpenAI-compatible gateways.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
