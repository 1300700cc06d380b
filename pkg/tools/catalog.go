package tools

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/policy"
)

// IndexCatalog is the output of list_indices.
type IndexCatalog struct {
	ConfiguredIndices *policy.Registry  `json:"configured_indices"`
	AllowedPatterns   []string          `json:"allowed_patterns"`
	Usage             map[string]string `json:"usage"`
}

// listIndicesTool describes the configured aliases without touching the backend.
type listIndicesTool struct{ deps Deps }

func (t *listIndicesTool) Name() domain.ToolName { return domain.ToolListIndices }

func (t *listIndicesTool) Description() string {
	return "List the configured index aliases and how to address them."
}

func (t *listIndicesTool) InputSchema() *openapi3.Schema { return objectSchema() }

func (t *listIndicesTool) Call(_ context.Context, _ map[string]any) (Result, error) {
	reg := t.deps.Policy.Registry
	return Result{Output: IndexCatalog{
		ConfiguredIndices: reg,
		AllowedPatterns:   t.deps.Policy.AllowList.Patterns(),
		Usage:             usage(reg),
	}}, nil
}

func usage(reg *policy.Registry) map[string]string {
	var names []string
	for _, a := range reg.Aliases() {
		if a.Name != policy.DefaultAlias {
			names = append(names, a.Name)
		}
	}
	for len(names) < 2 {
		names = append(names, policy.DefaultAlias)
	}
	return map[string]string{
		"single":   fmt.Sprintf("index: '%s'", names[0]),
		"multiple": fmt.Sprintf("index: '%s,%s'", names[0], names[1]),
		"all":      fmt.Sprintf("index: '%s'", policy.AllIndices),
	}
}
