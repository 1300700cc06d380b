package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate/pkg/policy"
)

// NewPolicy builds a mediation policy with a time range requirement of now-1h.
// Patterns default to ["*"]; aliases default to a single "default" -> minutes_v1.
// It fails the test immediately on error.
func NewPolicy(t *testing.T, maxSize int, patterns []string, aliases ...policy.Alias) *policy.Policy {
	t.Helper()

	if len(aliases) == 0 {
		aliases = []policy.Alias{{Name: policy.DefaultAlias, Index: "minutes_v1"}}
	}
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}

	reg, err := policy.NewRegistry(aliases...)
	require.NoError(t, err, "Failed to build alias registry")
	allow, err := policy.NewAllowList(patterns)
	require.NoError(t, err, "Failed to build allow-list")

	return &policy.Policy{
		Registry:  reg,
		AllowList: allow,
		TimeRange: policy.NewTimeRange(true, "now-1h"),
		MaxSize:   maxSize,
	}
}
