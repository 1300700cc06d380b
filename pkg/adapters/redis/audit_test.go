package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate/pkg/adapters/redis"
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/ports"
)

var _ ports.AuditSink = (*redis.AuditSink)(nil)

func newSink(t *testing.T, opts ...redis.Option) (*redis.AuditSink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func entry(tool domain.ToolName, ms int64) domain.AuditEntry {
	return domain.AuditEntry{
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Tool:       tool,
		Indices:    []string{"plans_v1"},
		Outcome:    "ok",
		DurationMS: ms,
	}
}

func TestAuditSink_RecordAndRecent(t *testing.T) {
	sink, mr := newSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Ping(ctx))
	require.NoError(t, sink.Record(ctx, entry(domain.ToolSearch, 1)))
	require.NoError(t, sink.Record(ctx, entry(domain.ToolESQL, 2)))

	got, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entry(domain.ToolESQL, 2), got[0])
	assert.Equal(t, entry(domain.ToolSearch, 1), got[1])

	list, err := mr.List("esgate:audit")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Contains(t, list[0], `"tool":"esql"`)
}

func TestAuditSink_TrimsToMaxEntries(t *testing.T) {
	sink, mr := newSink(t, redis.WithKey("audit:test"), redis.WithMaxEntries(3))
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, sink.Record(ctx, entry(domain.ToolHealth, i)))
	}

	list, err := mr.List("audit:test")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	got, err := sink.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(4), got[0].DurationMS)
	assert.Equal(t, int64(2), got[2].DurationMS)
}

func TestAuditSink_RecentZero(t *testing.T) {
	sink, _ := newSink(t)
	got, err := sink.Recent(context.Background(), 0)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuditSink_Unreachable(t *testing.T) {
	sink, mr := newSink(t)
	mr.Close()

	err := sink.Record(context.Background(), entry(domain.ToolSearch, 1))
	assert.ErrorContains(t, err, "failed to write audit entry")
}
