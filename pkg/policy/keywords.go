package policy

import (
	"regexp"
	"strings"

	"github.com/aretw0/esgate/pkg/domain"
)

// ForbiddenKeywords are the mutating verbs rejected in pipe queries.
var ForbiddenKeywords = []string{"DELETE", "UPDATE", "CREATE", "DROP", "PUT", "POST"}

var forbiddenPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(ForbiddenKeywords, "|") + `)\b`)

// CheckForbidden rejects a pipe query containing a forbidden verb as a whole word.
// This is a textual guard, not a parser: it is a safety net, not a security boundary.
func CheckForbidden(q string) error {
	if m := forbiddenPattern.FindString(q); m != "" {
		return domain.NewValidationError(domain.ErrForbiddenKeyword, "forbidden keyword %q", strings.ToUpper(m))
	}
	return nil
}
