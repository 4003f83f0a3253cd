package lexai

import "github.com/kailas-cloud/lexai/internal/domain"

// Record is one reference document of a corpus.
type Record struct {
	URL      string
	Title    string
	Subtitle string
	Content  string
}

// Match is one ranked reference, best first.
type Match struct {
	Rank     int // 1-based
	Distance float64
	Record   Record
}

// Status tags an Outcome.
type Status string

// Outcome statuses.
const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Failure describes why a question could not be answered.
type Failure struct {
	Kind    ErrorKind
	Message string // human-readable, safe to show to end users
}

// Outcome is the result of Ask. Either Response and Matches or Failure is set.
type Outcome struct {
	Status   Status
	Response string
	Matches  []Match
	Failure  *Failure
}

// OK reports whether the question was answered.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Message is one entry of a generation request.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

func outcomeFromDomain(o domain.Outcome) Outcome {
	out := Outcome{Status: Status(o.Status), Response: o.Response}
	if o.Failure != nil {
		out.Failure = &Failure{Kind: o.Failure.Kind, Message: o.Failure.Message}
	}
	if len(o.Matches) > 0 {
		out.Matches = make([]Match, len(o.Matches))
		for i, m := range o.Matches {
			out.Matches[i] = Match{
				Rank:     m.Rank,
				Distance: m.Distance,
				Record: Record{
					URL:      m.Record.URL,
					Title:    m.Record.Title,
					Subtitle: m.Record.Subtitle,
					Content:  m.Record.Content,
				},
			}
		}
	}
	return out
}
