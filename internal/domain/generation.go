package domain

import "context"

// Message roles understood by generation providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a generation request.
type Message struct {
	Role    string
	Content string
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Generator maps an ordered message set to generated text.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (GenerationResult, error)
}
