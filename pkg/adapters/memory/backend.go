package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/query"
)

// Operation names one backend capability.
type Operation string

const (
	OpSearch        Operation = "search"
	OpPipelineQuery Operation = "pipeline_query"
	OpClusterHealth Operation = "cluster_health"
	OpCatIndices    Operation = "cat_indices"
)

// Call is one recorded backend request. Body is the encoded request body, captured
// at call time so later mutation by the caller cannot change the record.
type Call struct {
	Op      Operation       `json:"op"`
	Indices []string        `json:"indices,omitempty"`
	Body    json.RawMessage `json:"body,omitempty"`
}

var defaultResponses = map[Operation]json.RawMessage{
	OpSearch:        json.RawMessage(`{"took":0,"timed_out":false,"hits":{"total":{"value":0,"relation":"eq"},"hits":[]}}`),
	OpPipelineQuery: json.RawMessage(`{"columns":[],"values":[]}`),
	OpClusterHealth: json.RawMessage(`{"cluster_name":"memory","status":"green"}`),
	OpCatIndices:    json.RawMessage(`[]`),
}

// Backend implements ports.Backend in memory. It answers with canned payloads and
// records every call. Used for dry runs and tests.
// Safe for concurrent use.
type Backend struct {
	mu        sync.Mutex
	calls     []Call
	responses map[Operation]json.RawMessage
	failures  map[Operation]error
}

// NewBackend creates a recording backend with empty, healthy responses.
func NewBackend() *Backend {
	b := &Backend{
		responses: make(map[Operation]json.RawMessage, len(defaultResponses)),
		failures:  make(map[Operation]error),
	}
	for op, raw := range defaultResponses {
		b.responses[op] = raw
	}
	return b
}

// Respond sets the payload returned for op.
func (b *Backend) Respond(op Operation, raw json.RawMessage) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[op] = raw
	return b
}

// Fail makes op return err. A nil err clears the failure.
func (b *Backend) Fail(op Operation, err error) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, op)
	} else {
		b.failures[op] = err
	}
	return b
}

// Calls returns a copy of the recorded calls in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// LastCall returns the most recent call.
func (b *Backend) LastCall() (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return Call{}, false
	}
	return b.calls[len(b.calls)-1], true
}

// Reset forgets the recorded calls.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

func (b *Backend) Search(ctx context.Context, indices []string, body query.Node) (json.RawMessage, error) {
	return b.record(ctx, OpSearch, indices, body)
}

func (b *Backend) PipelineQuery(ctx context.Context, body query.Node) (json.RawMessage, error) {
	return b.record(ctx, OpPipelineQuery, nil, body)
}

func (b *Backend) ClusterHealth(ctx context.Context) (json.RawMessage, error) {
	return b.record(ctx, OpClusterHealth, nil, nil)
}

func (b *Backend) CatIndices(ctx context.Context) (json.RawMessage, error) {
	return b.record(ctx, OpCatIndices, nil, nil)
}

func (b *Backend) record(ctx context.Context, op Operation, indices []string, body query.Node) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.BackendError{Op: string(op), Err: err}
	}

	call := Call{Op: op, Indices: append([]string(nil), indices...)}
	if body != nil {
		raw, err := query.Encode(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", op, err)
		}
		call.Body = raw
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	if err := b.failures[op]; err != nil {
		return nil, err
	}
	return b.responses[op], nil
}
