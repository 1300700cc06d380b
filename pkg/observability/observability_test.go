package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/observability"
)

func returnEvent(tool domain.ToolName, err error) *domain.ToolEvent {
	e := &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventToolReturn},
		ToolName:  tool,
		Indices:   []string{"plans_v1"},
		Duration:  250 * time.Millisecond,
	}
	if err != nil {
		e.IsError = true
		e.Err = domain.NewToolError(tool, err)
	}
	return e
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	m.Observe(returnEvent(domain.ToolSearch, nil))
	m.Observe(returnEvent(domain.ToolSearch, nil))
	m.Observe(returnEvent(domain.ToolESQL, domain.NewValidationError(domain.ErrForbiddenKeyword, `forbidden keyword "DROP"`)))
	m.Observe(returnEvent(domain.ToolHealth, &domain.BackendError{Op: "cluster health", Status: 500, Msg: "boom"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("esql", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("health", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PolicyRejections.WithLabelValues("forbidden_keyword")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PolicyRejections))
	assert.Equal(t, 3, testutil.CollectAndCount(m.ToolDuration))

	expected := `
# HELP esgate_policy_rejections_total Requests rejected before reaching the backend, by reason
# TYPE esgate_policy_rejections_total counter
esgate_policy_rejections_total{reason="forbidden_keyword"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "esgate_policy_rejections_total"))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.NewValidationError(domain.ErrIndexNotAllowed, "index 'x' not allowed"), "index_not_allowed"},
		{domain.NewValidationError(domain.ErrMissingArgument, "query required"), "missing_argument"},
		{domain.NewValidationError(domain.ErrInvalidArgument, "size must be a number"), "invalid_argument"},
		{errors.New("anything"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, observability.RejectionReason(tt.err))
	}
}

func TestHooks_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	hooks := observability.Hooks(logger, m)
	ctx := context.Background()

	hooks.OnToolCall(ctx, &domain.ToolEvent{ToolName: domain.ToolSearch})
	hooks.OnToolReturn(ctx, returnEvent(domain.ToolSearch, nil))
	hooks.OnToolReturn(ctx, returnEvent(domain.ToolSearch, domain.NewValidationError(domain.ErrIndexNotAllowed, "index 'secret' not allowed")))

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=tool_call tool=search")
	assert.Contains(t, out, "level=INFO msg=tool_return tool=search")
	assert.Contains(t, out, "level=WARN msg=tool_rejected")
	assert.Contains(t, out, "reason=index_not_allowed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PolicyRejections.WithLabelValues("index_not_allowed")))
}

func TestHooks_NilArguments(t *testing.T) {
	hooks := observability.Hooks(nil, nil)
	assert.NotPanics(t, func() {
		hooks.OnToolReturn(context.Background(), returnEvent(domain.ToolHealth, errors.New("x")))
	})
}
