package policy

import (
	"regexp"
	"strings"

	"github.com/aretw0/esgate/pkg/query"
)

const (
	// DefaultLookback is the lower bound injected when a query has no time range.
	DefaultLookback = "now-15m"
	// PipeTimeField is the time field assumed by pipe queries.
	// It is deliberately not taken from the structured candidate list.
	PipeTimeField = "@timestamp"
)

// DefaultTimeFields are the structured-query fields recognised as time constraints,
// in order of preference. The first one is used for injected filters.
var DefaultTimeFields = []string{"@timestamp", "timestamp", "event.ingested"}

var whereClause = regexp.MustCompile(`(?i)\bWHERE\b`)

// TimeRange injects a default lower time bound into queries that lack one.
type TimeRange struct {
	Required  bool
	Lookback  string
	Fields    []string
	PipeField string
}

// NewTimeRange returns a mediator with the default field names.
func NewTimeRange(required bool, lookback string) TimeRange {
	if lookback == "" {
		lookback = DefaultLookback
	}
	return TimeRange{
		Required:  required,
		Lookback:  lookback,
		Fields:    append([]string(nil), DefaultTimeFields...),
		PipeField: PipeTimeField,
	}
}

// HasTimeRange reports whether any mapping in the tree holds a "range" mapping
// keyed by one of the recognised time fields.
func (t TimeRange) HasTimeRange(n query.Node) bool {
	switch v := n.(type) {
	case query.Mapping:
		for _, k := range v.Keys() {
			child := v[k]
			if k == "range" {
				if r, ok := child.(query.Mapping); ok && t.hasTimeField(r) {
					return true
				}
			}
			if t.HasTimeRange(child) {
				return true
			}
		}
	case query.Sequence:
		for _, child := range v {
			if t.HasTimeRange(child) {
				return true
			}
		}
	}
	return false
}

func (t TimeRange) hasTimeField(r query.Mapping) bool {
	for _, f := range t.Fields {
		if _, ok := r[f]; ok {
			return true
		}
	}
	return false
}

// EnsureStructured returns n unchanged when it already carries a time range (or
// the policy is off). Otherwise it returns a new bool/must conjunction of a range
// filter on the first time field and the original query. n is never mutated.
func (t TimeRange) EnsureStructured(n query.Node) query.Node {
	if !t.Required || t.HasTimeRange(n) {
		return n
	}
	injected := query.Mapping{
		"bool": query.Mapping{
			"must": query.Sequence{
				query.Mapping{
					"range": query.Mapping{
						t.field(): query.Mapping{"gte": query.Scalar{V: t.Lookback}},
					},
				},
			},
		},
	}
	if query.IsEmpty(n) {
		return injected
	}
	return query.Mapping{
		"bool": query.Mapping{
			"must": query.Sequence{injected, n},
		},
	}
}

// EnsurePipe injects "WHERE <field> >= <lookback>" after the first stage of a pipe
// query unless the query already has a WHERE clause (or the policy is off).
func (t TimeRange) EnsurePipe(q string) string {
	if !t.Required || whereClause.MatchString(q) {
		return q
	}
	clause := " WHERE " + t.pipeField() + " >= " + t.Lookback
	if head, rest, ok := strings.Cut(q, "|"); ok {
		return strings.TrimSpace(head) + clause + " | " + rest
	}
	return strings.TrimSpace(q) + clause
}

func (t TimeRange) field() string {
	if len(t.Fields) == 0 {
		return DefaultTimeFields[0]
	}
	return t.Fields[0]
}

func (t TimeRange) pipeField() string {
	if t.PipeField == "" {
		return PipeTimeField
	}
	return t.PipeField
}
