package domain

// Match is one ranked corpus hit.
type Match struct {
	Rank     int // 1-based
	Index    int // corpus row
	Distance float64
	Record   DocumentRecord
}

// MatchResult is the ordered list of hits, best first.
type MatchResult []Match

// Status tags an Outcome.
type Status string

// Outcome statuses.
const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Failure describes a failed run.
type Failure struct {
	Kind    ErrorKind
	Message string
}

// Outcome is the result of one orchestration run. Either Response/Matches or Failure is set.
type Outcome struct {
	Status   Status
	Response string
	Matches  MatchResult
	Failure  *Failure
}

// Succeeded builds a successful outcome.
func Succeeded(response string, matches MatchResult) Outcome {
	return Outcome{Status: StatusOK, Response: response, Matches: matches}
}

// Failed builds a failed outcome. It never carries matches.
func Failed(kind ErrorKind, message string) Outcome {
	return Outcome{Status: StatusFailed, Failure: &Failure{Kind: kind, Message: message}}
}

// OK reports whether the run succeeded.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Kind returns the failure kind, or "" on success.
func (o Outcome) Kind() ErrorKind {
	if o.Failure == nil {
		return ""
	}
	return o.Failure.Kind
}
