package domain

import (
	"fmt"
	"sort"
)

// Jurisdiction is a legal domain with its own corpus and persona.
type Jurisdiction struct {
	Name            string
	CorpusLocator   string
	RoleDescription string
}

// JurisdictionTable is the process-wide jurisdiction configuration.
// It is immutable after construction and safe for concurrent reads.
type JurisdictionTable struct {
	byName map[string]Jurisdiction
	names  []string
}

// NewJurisdictionTable copies the given jurisdictions into an immutable table.
func NewJurisdictionTable(js ...Jurisdiction) (JurisdictionTable, error) {
	t := JurisdictionTable{byName: make(map[string]Jurisdiction, len(js))}
	for _, j := range js {
		if j.Name == "" {
			return JurisdictionTable{}, fmt.Errorf("jurisdiction name is required")
		}
		if _, dup := t.byName[j.Name]; dup {
			return JurisdictionTable{}, fmt.Errorf("duplicate jurisdiction %q", j.Name)
		}
		if j.CorpusLocator == "" {
			return JurisdictionTable{}, fmt.Errorf("jurisdiction %q: corpus locator is required", j.Name)
		}
		t.byName[j.Name] = j
		t.names = append(t.names, j.Name)
	}
	sort.Strings(t.names)
	return t, nil
}

// Lookup returns the jurisdiction by display name.
func (t JurisdictionTable) Lookup(name string) (Jurisdiction, error) {
	j, ok := t.byName[name]
	if !ok {
		return Jurisdiction{}, fmt.Errorf("%w: %q", ErrInvalidJurisdiction, name)
	}
	return j, nil
}

// Names returns the jurisdiction names in sorted order.
func (t JurisdictionTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of configured jurisdictions.
func (t JurisdictionTable) Len() int { return len(t.names) }
