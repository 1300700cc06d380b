package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/query"
)

// Config holds the connection settings of an Elasticsearch cluster.
type Config struct {
	Endpoint  string
	APIKey    string
	Username  string
	Password  string
	VerifyTLS bool
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
}

// ErrNoEndpoint is returned when the endpoint is empty.
var ErrNoEndpoint = errors.New("elasticsearch endpoint missing")

// ErrNoCredentials is returned when neither an API key nor basic auth is configured.
var ErrNoCredentials = errors.New("missing basic auth credentials")

// Backend implements ports.Backend on top of the official Go client.
type Backend struct {
	client  *es.Client
	timeout time.Duration
}

// New creates a backend. An API key takes precedence over basic auth.
func New(cfg Config) (*Backend, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNoEndpoint
	}

	esCfg := es.Config{
		Addresses: []string{strings.TrimRight(cfg.Endpoint, "/")},
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}, //nolint:gosec // operator opt-out
		},
	}
	if cfg.APIKey != "" {
		esCfg.APIKey = cfg.APIKey
	} else {
		if cfg.Username == "" || cfg.Password == "" {
			return nil, ErrNoCredentials
		}
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return NewFromClient(client, cfg.Timeout), nil
}

// NewFromClient creates a backend from an existing client.
func NewFromClient(client *es.Client, timeout time.Duration) *Backend {
	return &Backend{client: client, timeout: timeout}
}

// Search runs a structured query against the given indices.
func (b *Backend) Search(ctx context.Context, indices []string, body query.Node) (json.RawMessage, error) {
	data, err := query.Encode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	res, err := b.client.Search(
		b.client.Search.WithContext(ctx),
		b.client.Search.WithIndex(indices...),
		b.client.Search.WithBody(bytes.NewReader(data)),
	)
	return read("search", res, err)
}

// PipelineQuery posts an ES|QL body to /_query.
func (b *Backend) PipelineQuery(ctx context.Context, body query.Node) (json.RawMessage, error) {
	data, err := query.Encode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode esql body: %w", err)
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/_query", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build esql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Perform(req)
	if err != nil {
		return nil, &domain.BackendError{Op: "esql", Err: err}
	}
	return read("esql", &esapi.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil)
}

// ClusterHealth returns the cluster health document.
func (b *Backend) ClusterHealth(ctx context.Context) (json.RawMessage, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	res, err := b.client.Cluster.Health(b.client.Cluster.Health.WithContext(ctx))
	return read("cluster health", res, err)
}

// CatIndices lists indices in JSON format.
func (b *Backend) CatIndices(ctx context.Context) (json.RawMessage, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	res, err := b.client.Cat.Indices(
		b.client.Cat.Indices.WithContext(ctx),
		b.client.Cat.Indices.WithFormat("json"),
	)
	return read("cat indices", res, err)
}

func (b *Backend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func read(op string, res *esapi.Response, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, &domain.BackendError{Op: op, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.BackendError{Op: op, Status: res.StatusCode, Msg: "failed to read response", Err: err}
	}
	if res.IsError() {
		return nil, &domain.BackendError{Op: op, Status: res.StatusCode, Msg: errorReason(body)}
	}
	return json.RawMessage(body), nil
}

// errorReason extracts "type: reason" from an Elasticsearch error document.
func errorReason(body []byte) string {
	var doc struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || len(doc.Error) == 0 {
		return strings.TrimSpace(string(body))
	}

	var cause struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(doc.Error, &cause); err != nil {
		// Some endpoints report the error as a plain string.
		var msg string
		if json.Unmarshal(doc.Error, &msg) == nil {
			return msg
		}
		return strings.TrimSpace(string(doc.Error))
	}
	if cause.Type == "" {
		return cause.Reason
	}
	return cause.Type + ": " + cause.Reason
}
