package esgate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/aretw0/esgate/pkg/adapters/http"
	"github.com/aretw0/esgate/pkg/adapters/mcp"
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/observability"
	"github.com/aretw0/esgate/pkg/policy"
	"github.com/aretw0/esgate/pkg/ports"
	"github.com/aretw0/esgate/pkg/rpc"
	"github.com/aretw0/esgate/pkg/tools"
)

// Version is the release version, overridden at build time with -ldflags "-X".
var Version = "0.1.0-dev"

// Gateway wires the policy, a backend and the transports together.
type Gateway struct {
	dispatcher *tools.Dispatcher
	rpc        *rpc.Server
	registry   *prometheus.Registry
	metrics    *observability.Metrics
	logger     *slog.Logger
	closers    []io.Closer
}

type settings struct {
	logger   *slog.Logger
	verbose  bool
	hooks    domain.LifecycleHooks
	audit    ports.AuditSink
	search   tools.SearchFields
	registry *prometheus.Registry
}

// Option configures a Gateway.
type Option func(*settings)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithVerbose adds error traces to JSON-RPC tool failures.
func WithVerbose(verbose bool) Option {
	return func(s *settings) {
		s.verbose = verbose
	}
}

// WithLifecycleHooks adds hooks next to the built-in logging and metrics hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithAuditSink records every tool call. A sink implementing io.Closer is closed
// by Gateway.Close.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(s *settings) {
		s.audit = sink
	}
}

// WithSearchFields sets the multi_search fields.
func WithSearchFields(fields tools.SearchFields) Option {
	return func(s *settings) {
		s.search = fields
	}
}

// WithMetricsRegistry registers metrics on reg instead of a private registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *settings) {
		s.registry = reg
	}
}

// New creates a Gateway mediating every call through p before it reaches backend.
func New(p *policy.Policy, backend ports.Backend, opts ...Option) (*Gateway, error) {
	if p == nil || p.Registry == nil || p.AllowList == nil {
		return nil, errors.New("esgate: incomplete policy")
	}
	if backend == nil {
		return nil, errors.New("esgate: nil backend")
	}

	s := settings{
		logger: slog.New(slog.DiscardHandler),
		search: tools.DefaultSearchFields,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}

	metrics, err := observability.NewMetrics(s.registry)
	if err != nil {
		return nil, err
	}

	hooks := observability.Hooks(s.logger, metrics).Merge(s.hooks)
	dispatcherOpts := []tools.Option{
		tools.WithLifecycleHooks(hooks),
		tools.WithLogger(s.logger),
	}
	g := &Gateway{
		registry: s.registry,
		metrics:  metrics,
		logger:   s.logger,
	}
	if s.audit != nil {
		dispatcherOpts = append(dispatcherOpts, tools.WithAuditSink(s.audit))
		if c, ok := s.audit.(io.Closer); ok {
			g.closers = append(g.closers, c)
		}
	}

	g.dispatcher = tools.NewDispatcher(tools.Deps{
		Policy:  p,
		Backend: backend,
		Search:  s.search,
	}, dispatcherOpts...)
	g.rpc = rpc.NewServer(g.dispatcher,
		rpc.WithVersion(Version),
		rpc.WithVerbose(s.verbose),
		rpc.WithLogger(s.logger),
	)
	return g, nil
}

// Call runs one tool.
func (g *Gateway) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	return g.dispatcher.Call(ctx, name, args)
}

// Tools describes the registered tools.
func (g *Gateway) Tools() []domain.ToolDescriptor {
	return g.dispatcher.Descriptors()
}

// Serve runs the line-delimited JSON-RPC loop.
func (g *Gateway) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return g.rpc.Serve(ctx, in, out)
}

// MCPServer returns an MCP adapter over the same tools.
func (g *Gateway) MCPServer() *mcp.Server {
	return mcp.NewServer(g.dispatcher, Version)
}

// HTTPHandler returns the HTTP transport, metrics included.
func (g *Gateway) HTTPHandler() http.Handler {
	return httpadapter.NewHandler(g.rpc, g.dispatcher, g.registry)
}

// Gatherer exposes the metrics registry.
func (g *Gateway) Gatherer() prometheus.Gatherer {
	return g.registry
}

// Metrics returns the tool call collectors.
func (g *Gateway) Metrics() *observability.Metrics {
	return g.metrics
}

// Close releases the audit sink, if it holds resources.
func (g *Gateway) Close() error {
	var errs []error
	for _, c := range g.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
