package tools

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/esgate/pkg/domain"
)

// healthTool reports cluster health.
type healthTool struct{ deps Deps }

func (t *healthTool) Name() domain.ToolName { return domain.ToolHealth }

func (t *healthTool) Description() string {
	return "Get the health of the Elasticsearch cluster (status, nodes, shards)."
}

func (t *healthTool) InputSchema() *openapi3.Schema { return objectSchema() }

func (t *healthTool) Call(ctx context.Context, _ map[string]any) (Result, error) {
	out, err := t.deps.Backend.ClusterHealth(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out}, nil
}

// catIndicesTool lists the indices of the cluster.
type catIndicesTool struct{ deps Deps }

func (t *catIndicesTool) Name() domain.ToolName { return domain.ToolCatIndices }

func (t *catIndicesTool) Description() string {
	return "List every index of the cluster with health, document count and size."
}

func (t *catIndicesTool) InputSchema() *openapi3.Schema { return objectSchema() }

func (t *catIndicesTool) Call(ctx context.Context, _ map[string]any) (Result, error) {
	out, err := t.deps.Backend.CatIndices(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out}, nil
}
