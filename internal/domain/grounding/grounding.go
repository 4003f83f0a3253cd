// Package grounding turns ranked corpus rows into matches and the message set
// handed to a generation provider.
package grounding

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/lexai/internal/domain"
	"github.com/kailas-cloud/lexai/internal/domain/ranking"
)

// DefaultAssistantTemplate is appended to every jurisdiction's role description.
const DefaultAssistantTemplate = "Your expertise lies in providing accurate and timely information on the laws and " +
	"regulations specific to your jurisdiction. Your role is to assist individuals, " +
	"including law enforcement officers, legal professionals, and the general public. " +
	"You help them understand and apply legal standards within this jurisdiction. You " +
	"are knowledgeable, precise, and must base your response on the provided context. " +
	"Keep your response concise and under 120 tokens."

const (
	contextPreamble = "Use the following context to answer the user's query:"
	noContext       = "No reference documents matched this query."
)

// Persona is the system-role text: jurisdiction role description plus the assistant template.
type Persona struct {
	RoleDescription string
	Template        string
}

// String joins role description and template on a newline.
func (p Persona) String() string {
	role := strings.TrimSpace(p.RoleDescription)
	tmpl := strings.TrimSpace(p.Template)
	switch {
	case role == "":
		return tmpl
	case tmpl == "":
		return role
	}
	return role + "\n" + tmpl
}

// Assemble projects ranked rows onto their records and builds the generation request:
// a persona system message, a context system message and the verbatim user query.
func Assemble(
	ranked []ranking.Ranked, records []domain.DocumentRecord, persona Persona, query string,
) (domain.MatchResult, []domain.Message, error) {
	matches := make(domain.MatchResult, len(ranked))
	for i, r := range ranked {
		if r.Index < 0 || r.Index >= len(records) {
			return nil, nil, fmt.Errorf("%w: match index %d outside %d metadata records",
				domain.ErrDataIntegrity, r.Index, len(records))
		}
		matches[i] = domain.Match{
			Rank:     i + 1,
			Index:    r.Index,
			Distance: r.Distance,
			Record:   records[r.Index],
		}
	}

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: persona.String()},
		{Role: domain.RoleSystem, Content: RenderContext(matches)},
		{Role: domain.RoleUser, Content: query},
	}
	return matches, messages, nil
}

// RenderContext renders matches as labelled blocks, best match first.
func RenderContext(matches domain.MatchResult) string {
	if len(matches) == 0 {
		return contextPreamble + "\n\n" + noContext
	}

	var sb strings.Builder
	sb.WriteString(contextPreamble)
	for _, m := range matches {
		sb.WriteString("\n\n")
		fmt.Fprintf(&sb, "[%d] Title: %s\n", m.Rank, m.Record.Title)
		if m.Record.Subtitle != "" {
			fmt.Fprintf(&sb, "Subtitle: %s\n", m.Record.Subtitle)
		}
		fmt.Fprintf(&sb, "URL: %s\n", m.Record.URL)
		fmt.Fprintf(&sb, "Content: %s", strings.TrimSpace(m.Record.Content))
	}
	return sb.String()
}
