package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/ports"
)

// Dispatcher maps tool names to their handlers and owns the error boundary.
type Dispatcher struct {
	tools  map[domain.ToolName]Tool
	order  []Tool
	hooks  domain.LifecycleHooks
	audit  ports.AuditSink
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Dispatcher) {
		d.hooks = d.hooks.Merge(hooks)
	}
}

// WithAuditSink records every call in sink.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(d *Dispatcher) {
		d.audit = sink
	}
}

// WithLogger sets the logger used for audit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithCallIDs overrides the call ID generator (tests).
func WithCallIDs(newID func() string) Option {
	return func(d *Dispatcher) {
		d.newID = newID
	}
}

// NewDispatcher builds the fixed tool registry.
func NewDispatcher(deps Deps, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		tools:  make(map[domain.ToolName]Tool, len(domain.ToolNames)),
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, t := range []Tool{
		&healthTool{deps: deps},
		&catIndicesTool{deps: deps},
		&searchTool{deps: deps},
		&esqlTool{deps: deps},
		&listIndicesTool{deps: deps},
		&multiSearchTool{deps: deps},
	} {
		d.tools[t.Name()] = t
		d.order = append(d.order, t)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tools returns the registered tools in registration order.
func (d *Dispatcher) Tools() []Tool {
	return append([]Tool(nil), d.order...)
}

// Descriptors describes every tool, including its argument schema.
func (d *Dispatcher) Descriptors() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, 0, len(d.order))
	for _, t := range d.order {
		desc := domain.ToolDescriptor{Name: t.Name(), Description: t.Description()}
		if schema, err := json.Marshal(t.InputSchema()); err == nil {
			desc.InputSchema = schema
		}
		out = append(out, desc)
	}
	return out
}

// Call runs a tool. Unknown names return domain.ErrToolNotFound; every other failure
// is a *domain.ToolError. Panics inside a tool are recovered.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	toolName, err := domain.ParseToolName(name)
	if err != nil {
		return nil, err
	}
	tool := d.tools[toolName]
	if args == nil {
		args = map[string]any{}
	}

	start := d.now()
	event := &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventToolCall},
		CallID:    d.newID(),
		ToolName:  toolName,
		Input:     args,
	}
	if d.hooks.OnToolCall != nil {
		d.hooks.OnToolCall(ctx, event)
	}

	res, callErr := d.invoke(ctx, tool, args)

	event.Type = domain.EventToolReturn
	event.Indices = res.Indices
	event.Duration = d.now().Sub(start)
	var toolErr *domain.ToolError
	if callErr != nil {
		toolErr = domain.NewToolError(toolName, callErr)
		event.IsError = true
		event.Err = toolErr
	}
	if d.hooks.OnToolReturn != nil {
		d.hooks.OnToolReturn(ctx, event)
	}
	d.record(ctx, event)

	if toolErr != nil {
		return nil, toolErr
	}
	return res.Output, nil
}

func (d *Dispatcher) invoke(ctx context.Context, tool Tool, args map[string]any) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name(), r)
		}
	}()
	if err := validateArgs(tool.InputSchema(), args); err != nil {
		return Result{}, err
	}
	return tool.Call(ctx, args)
}

func (d *Dispatcher) record(ctx context.Context, event *domain.ToolEvent) {
	if d.audit == nil {
		return
	}
	if err := d.audit.Record(ctx, domain.NewAuditEntry(event)); err != nil {
		d.logger.Warn("audit record failed", "tool", event.ToolName, "error", err)
	}
}
