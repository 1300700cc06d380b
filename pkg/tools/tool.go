package tools

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/policy"
	"github.com/aretw0/esgate/pkg/ports"
)

// Tool is one operation of the registry.
type Tool interface {
	Name() domain.ToolName
	Description() string
	InputSchema() *openapi3.Schema
	Call(ctx context.Context, args map[string]any) (Result, error)
}

// Result is the outcome of a successful tool call.
// Output is passed to the transport unmodified.
type Result struct {
	Output  any
	Indices []string
}

// SearchFields configures the multi-index text search.
type SearchFields struct {
	// Fields are the multi_match fields, with optional boosts ("title^2").
	Fields []string
	// Source limits the returned document fields.
	Source []string
}

// DefaultSearchFields fit the document indices of the default registry.
var DefaultSearchFields = SearchFields{
	Fields: []string{"title^2", "content_text"},
	Source: []string{"title", "organization_code", "created_at", "content_text"},
}

// Deps are the collaborators every tool shares.
type Deps struct {
	Policy  *policy.Policy
	Backend ports.Backend
	Search  SearchFields
}
