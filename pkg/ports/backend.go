package ports

import (
	"context"
	"encoding/json"

	"github.com/aretw0/esgate/pkg/query"
)

// Backend is the capability set esgate needs from a search cluster.
// Implementations return the backend payload verbatim and report failures
// as *domain.BackendError.
type Backend interface {
	// Search runs a structured query against the given concrete indices.
	Search(ctx context.Context, indices []string, body query.Node) (json.RawMessage, error)

	// PipelineQuery runs a pipe-language (ES|QL) request body.
	PipelineQuery(ctx context.Context, body query.Node) (json.RawMessage, error)

	// ClusterHealth returns the cluster health document.
	ClusterHealth(ctx context.Context) (json.RawMessage, error)

	// CatIndices lists the indices of the cluster.
	CatIndices(ctx context.Context) (json.RawMessage, error)
}
