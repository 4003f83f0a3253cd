package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/lexai/internal/domain"
)

func newTestGenerator(t *testing.T, baseURL string) *Generator {
	t.Helper()
	gen, err := NewGenerator(&Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gpt-4",
	}, GenerationParams{Temperature: 0.7, TopP: 1, MaxTokens: 120})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return gen
}

func TestGenerator_Generate(t *testing.T) {
	var got openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "Under the Act, yes."},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 42, CompletionTokens: 7, TotalTokens: 49},
		})
	}))
	defer server.Close()

	msgs := []domain.Message{
		{Role: domain.RoleSystem, Content: "persona"},
		{Role: domain.RoleSystem, Content: "context"},
		{Role: domain.RoleUser, Content: "Can I?"},
	}
	res, err := newTestGenerator(t, server.URL).Generate(context.Background(), msgs)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if res.Text != "Under the Act, yes." {
		t.Errorf("Text = %q", res.Text)
	}
	if res.PromptTokens != 42 || res.CompletionTokens != 7 {
		t.Errorf("unexpected usage: %+v", res)
	}
	if got.Model != "gpt-4" || got.MaxTokens != 120 || got.Temperature != 0.7 || got.TopP != 1 {
		t.Errorf("unexpected request params: model=%q max=%d temp=%v top_p=%v",
			got.Model, got.MaxTokens, got.Temperature, got.TopP)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got.Messages))
	}
	for i, m := range msgs {
		if got.Messages[i].Role != m.Role || got.Messages[i].Content != m.Content {
			t.Errorf("message[%d] = %+v, want %+v", i, got.Messages[i], m)
		}
	}
}

func TestGenerator_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "x"})
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), nil)
	if !errors.Is(err, domain.ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
}

func TestGenerator_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid key", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), nil)
	if got := domain.Classify(err); got != domain.KindProviderAuth {
		t.Fatalf("kind = %q, want %q (err=%v)", got, domain.KindProviderAuth, err)
	}
}

func TestGenerator_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestGenerator(t, server.URL).Generate(ctx, nil)
	if !errors.Is(err, domain.ErrProviderTimeout) {
		t.Fatalf("expected ErrProviderTimeout, got %v", err)
	}
}

func TestNewGenerator_MissingKey(t *testing.T) {
	if _, err := NewGenerator(&Config{Model: "gpt-4"}, GenerationParams{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
