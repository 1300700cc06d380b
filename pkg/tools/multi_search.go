package tools

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/policy"
	"github.com/aretw0/esgate/pkg/query"
)

type multiSearchArgs struct {
	Indices string `mapstructure:"indices"`
	Query   string `mapstructure:"query"`
	Size    *int   `mapstructure:"size"`
}

// multiSearchTool runs a full-text search across several aliases.
type multiSearchTool struct{ deps Deps }

func (t *multiSearchTool) Name() domain.ToolName { return domain.ToolMultiSearch }

func (t *multiSearchTool) Description() string {
	return "Full-text search across several indices at once (default: all configured aliases)."
}

func (t *multiSearchTool) InputSchema() *openapi3.Schema {
	s := objectSchema("query")
	withProperty(s, "indices", stringProp(policy.AllIndices), "Comma-separated aliases or 'all'")
	withProperty(s, "query", stringProp(""), "Search text")
	withProperty(s, "size", integerProp(policy.DefaultSize), "Number of hits to return")
	return s
}

func (t *multiSearchTool) Call(ctx context.Context, raw map[string]any) (Result, error) {
	args := multiSearchArgs{Indices: policy.AllIndices}
	if err := decodeArgs(raw, &args); err != nil {
		return Result{}, err
	}
	size := policy.DefaultSize
	if args.Size != nil {
		size = *args.Size
	}
	size = t.deps.Policy.Size(size)

	if args.Query == "" {
		return Result{}, domain.NewValidationError(domain.ErrMissingArgument, "query text required")
	}

	indices, err := t.deps.Policy.Indices(args.Indices)
	if err != nil {
		return Result{}, err
	}

	fields := t.deps.Search
	if len(fields.Fields) == 0 {
		fields = DefaultSearchFields
	}
	body := query.Mapping{
		"size": query.Scalar{V: size},
		"query": query.Mapping{
			"multi_match": query.Mapping{
				"query":  query.Scalar{V: args.Query},
				"fields": query.FromValue(fields.Fields),
			},
		},
	}
	if len(fields.Source) > 0 {
		body["_source"] = query.FromValue(fields.Source)
	}
	body["query"] = t.deps.Policy.TimeRange.EnsureStructured(body["query"])

	out, err := t.deps.Backend.Search(ctx, indices, body)
	if err != nil {
		return Result{Indices: indices}, err
	}
	return Result{Output: out, Indices: indices}, nil
}
