package elasticsearch_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/esgate/pkg/adapters/elasticsearch"
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/ports"
	"github.com/aretw0/esgate/pkg/query"
)

type recorded struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

// fakeCluster answers like an Elasticsearch node and remembers the requests.
type fakeCluster struct {
	mu       sync.Mutex
	requests []recorded
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   string(body),
		Auth:   r.Header.Get("Authorization"),
	})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/_cluster/health":
		_, _ = w.Write([]byte(`{"cluster_name":"fake","status":"green"}`))
	case r.URL.Path == "/_cat/indices":
		_, _ = w.Write([]byte(`[{"index":"plans_v1","health":"green"}]`))
	case r.URL.Path == "/_query":
		_, _ = w.Write([]byte(`{"columns":[{"name":"title","type":"text"}],"values":[["a"]]}`))
	case r.URL.Path == "/broken/_search":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"parsing_exception","reason":"unknown query [nope]"},"status":400}`))
	default:
		_, _ = w.Write([]byte(`{"took":1,"hits":{"total":{"value":1,"relation":"eq"},"hits":[{"_id":"1"}]}}`))
	}
}

func (f *fakeCluster) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newBackend(t *testing.T) (*elasticsearch.Backend, *fakeCluster) {
	t.Helper()
	fake := &fakeCluster{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	b, err := elasticsearch.New(elasticsearch.Config{
		Endpoint:  srv.URL + "/",
		APIKey:    "c2VjcmV0",
		VerifyTLS: true,
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	return b, fake
}

func TestBackend_Contract(t *testing.T) {
	b, _ := newBackend(t)
	ports.RunBackendContract(t, b)
}

func TestBackend_SearchPassesBodyAndIndices(t *testing.T) {
	b, fake := newBackend(t)

	raw, err := b.Search(context.Background(), []string{"plans_v1", "bulletins_v1"}, query.Mapping{
		"size":  query.Scalar{V: 10},
		"query": query.Mapping{"match_all": query.Mapping{}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"took":1,"hits":{"total":{"value":1,"relation":"eq"},"hits":[{"_id":"1"}]}}`, string(raw))

	req := fake.last()
	assert.Equal(t, "/plans_v1,bulletins_v1/_search", req.Path)
	assert.JSONEq(t, `{"query":{"match_all":{}},"size":10}`, req.Body)
	scheme, credentials, _ := strings.Cut(req.Auth, " ")
	assert.True(t, strings.EqualFold("ApiKey", scheme), "auth scheme %q", scheme)
	assert.Equal(t, "c2VjcmV0", credentials)
}

func TestBackend_PipelineQuery(t *testing.T) {
	b, fake := newBackend(t)

	raw, err := b.PipelineQuery(context.Background(), query.Mapping{"query": query.Scalar{V: "FROM logs | LIMIT 1"}})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Contains(t, out, "values")

	req := fake.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/_query", req.Path)
	assert.JSONEq(t, `{"query":"FROM logs | LIMIT 1"}`, req.Body)
}

func TestBackend_ErrorStatus(t *testing.T) {
	b, _ := newBackend(t)

	_, err := b.Search(context.Background(), []string{"broken"}, query.Mapping{})
	var be *domain.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.Status)
	assert.Equal(t, "search: [400] parsing_exception: unknown query [nope]", be.Error())
}

func TestNew_Validation(t *testing.T) {
	_, err := elasticsearch.New(elasticsearch.Config{})
	assert.ErrorIs(t, err, elasticsearch.ErrNoEndpoint)

	_, err = elasticsearch.New(elasticsearch.Config{Endpoint: "http://localhost:9200", Username: "elastic"})
	assert.ErrorIs(t, err, elasticsearch.ErrNoCredentials)

	_, err = elasticsearch.New(elasticsearch.Config{Endpoint: "http://localhost:9200", Username: "elastic", Password: "changeme"})
	assert.NoError(t, err)
}
