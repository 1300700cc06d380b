package tools

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/policy"
	"github.com/aretw0/esgate/pkg/query"
)

type searchArgs struct {
	Index string         `mapstructure:"index"`
	Body  map[string]any `mapstructure:"body"`
}

// searchTool runs a caller-supplied Query DSL body.
type searchTool struct{ deps Deps }

func (t *searchTool) Name() domain.ToolName { return domain.ToolSearch }

func (t *searchTool) Description() string {
	return "Run a Query DSL search. A time range and a size limit are enforced before the query is sent."
}

func (t *searchTool) InputSchema() *openapi3.Schema {
	s := objectSchema()
	withProperty(s, "index", stringProp(policy.DefaultAlias),
		"Alias, comma-separated aliases, 'all' or a literal index name")
	withProperty(s, "body", openapi3.NewObjectSchema(),
		"Search request body (query, size, sort, aggs, ...)")
	return s
}

func (t *searchTool) Call(ctx context.Context, raw map[string]any) (Result, error) {
	args := searchArgs{Index: policy.DefaultAlias}
	if err := decodeArgs(raw, &args); err != nil {
		return Result{}, err
	}

	indices, err := t.deps.Policy.Indices(args.Index)
	if err != nil {
		return Result{}, err
	}

	body, ok := query.FromValue(args.Body).(query.Mapping)
	if !ok {
		body = query.Mapping{}
	}
	if err := t.deps.Policy.MediateSearch(body); err != nil {
		return Result{Indices: indices}, err
	}

	out, err := t.deps.Backend.Search(ctx, indices, body)
	if err != nil {
		return Result{Indices: indices}, err
	}
	return Result{Output: out, Indices: indices}, nil
}
