package corpus

import (
	"fmt"
	"regexp"
	"strings"
)

// Scheme identifies the storage backend behind a corpus locator.
type Scheme string

// Supported locator schemes.
const (
	SchemeFile  Scheme = "file"
	SchemeRedis Scheme = "redis"
	SchemeSQL   Scheme = "sql"
)

// Locator is a parsed corpus location.
type Locator struct {
	Scheme Scheme
	Target string // file path, redis key or table name
	Raw    string
}

func (l Locator) String() string { return l.Raw }

// Gzip reports whether a file locator points at a gzip-compressed payload.
func (l Locator) Gzip() bool {
	return l.Scheme == SchemeFile && strings.HasSuffix(l.Target, ".gz")
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ParseLocator splits a locator into scheme and target. Strings without a
// known scheme are file paths.
func ParseLocator(raw string) (Locator, error) {
	if strings.TrimSpace(raw) == "" {
		return Locator{}, fmt.Errorf("empty corpus locator")
	}
	scheme, target, found := strings.Cut(raw, "://")
	if !found {
		return Locator{Scheme: SchemeFile, Target: raw, Raw: raw}, nil
	}

	loc := Locator{Scheme: Scheme(scheme), Target: target, Raw: raw}
	switch loc.Scheme {
	case SchemeFile, SchemeRedis:
	case SchemeSQL:
		if !tableNameRe.MatchString(target) {
			return Locator{}, fmt.Errorf("invalid table name %q in corpus locator", target)
		}
	default:
		return Locator{}, fmt.Errorf("unsupported corpus locator scheme %q", scheme)
	}
	if target == "" {
		return Locator{}, fmt.Errorf("corpus locator %q has no target", raw)
	}
	return loc, nil
}
