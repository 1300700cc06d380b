package tools

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/query"
)

type esqlArgs struct {
	Query string `mapstructure:"query"`
}

// esqlTool runs a read-only ES|QL query.
type esqlTool struct{ deps Deps }

func (t *esqlTool) Name() domain.ToolName { return domain.ToolESQL }

func (t *esqlTool) Description() string {
	return "Run a read-only ES|QL query. Mutating commands are rejected and a WHERE time bound is added when missing."
}

func (t *esqlTool) InputSchema() *openapi3.Schema {
	s := objectSchema("query")
	withProperty(s, "query", stringProp(""), "ES|QL query, e.g. FROM logs | LIMIT 10")
	return s
}

func (t *esqlTool) Call(ctx context.Context, raw map[string]any) (Result, error) {
	var args esqlArgs
	if err := decodeArgs(raw, &args); err != nil {
		return Result{}, err
	}
	if args.Query == "" {
		return Result{}, domain.NewValidationError(domain.ErrMissingArgument, "query required")
	}

	q, indices, err := t.deps.Policy.MediatePipe(args.Query)
	if err != nil {
		return Result{}, err
	}

	out, err := t.deps.Backend.PipelineQuery(ctx, query.Mapping{"query": query.Scalar{V: q}})
	if err != nil {
		return Result{Indices: indices}, err
	}
	return Result{Output: out, Indices: indices}, nil
}
