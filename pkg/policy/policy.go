package policy

import (
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/query"
)

// Policy applies the mediation steps in the order tools require them.
type Policy struct {
	Registry  *Registry
	AllowList *AllowList
	TimeRange TimeRange
	MaxSize   int
}

// Indices resolves spec and checks every resulting name against the allow-list.
func (p *Policy) Indices(spec string) ([]string, error) {
	resolved, err := p.Registry.Resolve(spec)
	if err != nil {
		return nil, err
	}
	return p.AllowList.CheckAll(resolved)
}

// MediateSearch rewrites a structured body in place: the query gets a time range
// (match_all when absent) and the size is clamped.
func (p *Policy) MediateSearch(body query.Mapping) error {
	q, ok := body["query"]
	if !ok {
		q = query.Mapping{"match_all": query.Mapping{}}
	}
	body["query"] = p.TimeRange.EnsureStructured(q)
	return ClampSize(body, p.MaxSize)
}

// MediatePipe resolves and allow-lists every source of a pipe query, rejects
// forbidden keywords in the caller's text and injects a time range. It returns the
// query to send and the indices it reads. Unless every index is allowed, a query that
// does not start with FROM is rejected since its sources cannot be checked.
func (p *Policy) MediatePipe(q string) (string, []string, error) {
	rewritten, sources, hasFrom := p.Registry.ResolveSources(q)
	if !hasFrom && !p.AllowList.AllowsAll() {
		return "", nil, domain.NewValidationError(domain.ErrIndexNotAllowed, "query must start with a FROM command")
	}
	var indices []string
	for _, resolved := range sources {
		names, err := p.AllowList.CheckAll(resolved)
		if err != nil {
			return "", nil, err
		}
		indices = append(indices, names...)
	}
	if err := CheckForbidden(q); err != nil {
		return "", nil, err
	}
	return p.TimeRange.EnsurePipe(rewritten), indices, nil
}

// Size bounds a caller-supplied result count without the absent-value default.
func (p *Policy) Size(requested int) int {
	return min(requested, p.MaxSize)
}
