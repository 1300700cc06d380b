package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/esgate/pkg/domain"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the tool call collectors.
type Metrics struct {
	ToolCalls        *prometheus.CounterVec
	ToolDuration     *prometheus.HistogramVec
	PolicyRejections *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ToolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esgate_tool_calls_total",
				Help: "Total number of tool calls by outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "esgate_tool_duration_seconds",
				Help:    "Duration of tool calls, backend round trip included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		PolicyRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esgate_policy_rejections_total",
				Help: "Requests rejected before reaching the backend, by reason",
			},
			[]string{"reason"},
		),
	}
	for _, c := range []prometheus.Collector{m.ToolCalls, m.ToolDuration, m.PolicyRejections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records a finished tool event.
func (m *Metrics) Observe(e *domain.ToolEvent) {
	tool := string(e.ToolName)
	outcome := OutcomeOK
	if e.IsError {
		outcome = OutcomeError
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(e.Duration.Seconds())

	if e.Err != nil && e.Err.Kind == domain.KindValidation {
		m.PolicyRejections.WithLabelValues(RejectionReason(e.Err)).Inc()
	}
}

// RejectionReason maps a validation failure to a low-cardinality label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotAllowed):
		return "index_not_allowed"
	case errors.Is(err, domain.ErrForbiddenKeyword):
		return "forbidden_keyword"
	case errors.Is(err, domain.ErrMissingArgument):
		return "missing_argument"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "other"
	}
}
