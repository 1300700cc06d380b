package policy

import (
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/query"
)

const (
	// DefaultSize is used when a structured query does not ask for a size.
	DefaultSize = 10
	// DefaultMaxSize is the ceiling used when none is configured.
	DefaultMaxSize = 100
	// SizeKey is the result-count field of a structured body.
	SizeKey = "size"
)

// ClampSize bounds body["size"] in place: absent becomes min(DefaultSize, max),
// larger than max becomes max, anything else is left alone.
func ClampSize(body query.Mapping, max int) error {
	n, ok := body[SizeKey]
	if !ok || query.IsEmpty(n) {
		body[SizeKey] = query.Scalar{V: min(DefaultSize, max)}
		return nil
	}
	s, ok := n.(query.Scalar)
	if !ok {
		return domain.NewValidationError(domain.ErrInvalidArgument, "size must be a number")
	}
	size, ok := s.Float()
	if !ok {
		return domain.NewValidationError(domain.ErrInvalidArgument, "size must be a number")
	}
	if size > float64(max) {
		body[SizeKey] = query.Scalar{V: max}
	}
	return nil
}
