package ports

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate/pkg/query"
)

// RunBackendContract runs a suite of tests to verify that a Backend implementation
// adheres to the defined interface contract. The backend must be healthy and answer
// every capability with a well-formed payload.
func RunBackendContract(t *testing.T, backend Backend) {
	ctx := context.Background()

	t.Run("Search", func(t *testing.T) {
		body := query.Mapping{
			"query": query.Mapping{"match_all": query.Mapping{}},
			"size":  query.Scalar{V: 1},
		}
		raw, err := backend.Search(ctx, []string{"contract-a", "contract-b"}, body)
		require.NoError(t, err, "Search should not return error")
		assert.True(t, json.Valid(raw), "Search payload must be valid JSON")

		var obj map[string]any
		assert.NoError(t, json.Unmarshal(raw, &obj), "Search payload must be an object")
	})

	t.Run("PipelineQuery", func(t *testing.T) {
		raw, err := backend.PipelineQuery(ctx, query.Mapping{"query": query.Scalar{V: "FROM contract-a | LIMIT 1"}})
		require.NoError(t, err, "PipelineQuery should not return error")
		assert.True(t, json.Valid(raw), "PipelineQuery payload must be valid JSON")
	})

	t.Run("ClusterHealth", func(t *testing.T) {
		raw, err := backend.ClusterHealth(ctx)
		require.NoError(t, err, "ClusterHealth should not return error")

		var obj map[string]any
		require.NoError(t, json.Unmarshal(raw, &obj), "ClusterHealth payload must be an object")
		assert.Contains(t, obj, "status")
	})

	t.Run("CatIndices", func(t *testing.T) {
		raw, err := backend.CatIndices(ctx)
		require.NoError(t, err, "CatIndices should not return error")

		var list []any
		assert.NoError(t, json.Unmarshal(raw, &list), "CatIndices payload must be an array")
	})
}
