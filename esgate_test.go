package esgate_test

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate"
	"github.com/aretw0/esgate/pkg/adapters/memory"
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/policy"
)

func testPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	reg, err := policy.NewRegistry(
		policy.Alias{Name: "default", Index: "minutes_v1"},
		policy.Alias{Name: "keikakuhoshin", Index: "plans_v1"},
		policy.Alias{Name: "kouhou", Index: "bulletins_v1"},
	)
	require.NoError(t, err)
	allow, err := policy.NewAllowList([]string{"*_v1"})
	require.NoError(t, err)
	return &policy.Policy{
		Registry:  reg,
		AllowList: allow,
		TimeRange: policy.NewTimeRange(true, "now-15m"),
		MaxSize:   100,
	}
}

type closingSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	closed  bool
}

func (s *closingSink) Record(_ context.Context, e domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *closingSink) Close() error {
	s.closed = true
	return nil
}

func TestNew_Validation(t *testing.T) {
	_, err := esgate.New(nil, memory.NewBackend())
	assert.Error(t, err)
	_, err = esgate.New(testPolicy(t), nil)
	assert.Error(t, err)
}

func TestGateway_ServeSession(t *testing.T) {
	backend := memory.NewBackend()
	sink := &closingSink{}
	var returned []domain.ToolName
	gw, err := esgate.New(testPolicy(t), backend,
		esgate.WithAuditSink(sink),
		esgate.WithLifecycleHooks(domain.LifecycleHooks{
			OnToolReturn: func(_ context.Context, e *domain.ToolEvent) { returned = append(returned, e.ToolName) },
		}),
	)
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"call_tool","params":{"name":"search","arguments":{"index":"keikakuhoshin,kouhou"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"call_tool","params":{"name":"search","arguments":{"index":"secret_v2"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"call_tool","params":{"name":"list_indices"}}`,
	}, "\n")
	var out strings.Builder
	require.NoError(t, gw.Serve(context.Background(), strings.NewReader(input), &out))

	var lines []map[string]any
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 5)
	assert.Equal(t, esgate.Version, lines[1]["result"].(map[string]any)["serverInfo"].(map[string]any)["version"])
	assert.Contains(t, lines[2], "result")
	assert.Equal(t, "index 'secret_v2' not allowed", lines[3]["error"].(map[string]any)["message"])
	assert.Contains(t, lines[4], "result")

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"plans_v1", "bulletins_v1"}, calls[0].Indices)

	assert.Equal(t, []domain.ToolName{domain.ToolSearch, domain.ToolSearch, domain.ToolListIndices}, returned)
	assert.Len(t, sink.entries, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(gw.Metrics().PolicyRejections.WithLabelValues("index_not_allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(gw.Metrics().ToolCalls.WithLabelValues("search", "ok"))+
		testutil.ToFloat64(gw.Metrics().ToolCalls.WithLabelValues("search", "error")))

	require.NoError(t, gw.Close())
	assert.True(t, sink.closed)
}

func TestGateway_Tools(t *testing.T) {
	gw, err := esgate.New(testPolicy(t), memory.NewBackend())
	require.NoError(t, err)

	var names []domain.ToolName
	for _, d := range gw.Tools() {
		names = append(names, d.Name)
	}
	assert.Equal(t, domain.ToolNames, names)
	assert.NotNil(t, gw.HTTPHandler())
	assert.NotNil(t, gw.MCPServer())
}
