package policy

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/esgate/pkg/domain"
)

// MatchAllPattern allows every index when it is the only configured pattern.
const MatchAllPattern = "*"

// AllowList matches concrete index names against glob patterns where "*" means any sequence.
// Matching is anchored and case-sensitive.
type AllowList struct {
	patterns []string
	matchAll bool
	compiled []*regexp.Regexp
}

// ParsePatterns splits a comma-separated pattern list, trimming each pattern.
func ParsePatterns(csv string) []string {
	parts := strings.Split(csv, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// NewAllowList compiles the patterns.
func NewAllowList(patterns []string) (*AllowList, error) {
	a := &AllowList{
		patterns: append([]string(nil), patterns...),
		matchAll: len(patterns) == 1 && patterns[0] == MatchAllPattern,
	}
	if a.matchAll {
		return a, nil
	}
	for _, p := range patterns {
		expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, ".*") + "$"
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile allow-list pattern %q: %w", p, err)
		}
		a.compiled = append(a.compiled, re)
	}
	return a, nil
}

// Patterns returns the configured patterns.
func (a *AllowList) Patterns() []string {
	return append([]string(nil), a.patterns...)
}

// AllowsAll reports whether the list is exactly the match-all pattern.
func (a *AllowList) AllowsAll() bool { return a.matchAll }

// Allows reports whether index matches at least one pattern.
func (a *AllowList) Allows(index string) bool {
	if a.matchAll {
		return true
	}
	for _, re := range a.compiled {
		if re.MatchString(index) {
			return true
		}
	}
	return false
}

// CheckAll verifies every name in a resolved comma list.
// It fails on the first name no pattern allows.
func (a *AllowList) CheckAll(resolved string) ([]string, error) {
	names := Split(resolved)
	for _, name := range names {
		if !a.Allows(name) {
			return nil, domain.NewValidationError(domain.ErrIndexNotAllowed, "index '%s' not allowed", name)
		}
	}
	return names, nil
}
