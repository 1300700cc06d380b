package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventToolCall   EventType = "tool_call"
	EventToolReturn EventType = "tool_return"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// ToolEvent represents a tool execution.
// Indices is filled once the index specifier has been resolved.
type ToolEvent struct {
	EventBase
	CallID   string         `json:"call_id"`
	ToolName ToolName       `json:"tool_name"`
	Input    map[string]any `json:"input,omitempty"`
	Indices  []string       `json:"indices,omitempty"`
	Duration time.Duration  `json:"duration,omitempty"`
	IsError  bool           `json:"is_error,omitempty"`
	Err      *ToolError     `json:"-"`
}

// LifecycleHooks defines callbacks for dispatcher observability.
type LifecycleHooks struct {
	OnToolCall   func(context.Context, *ToolEvent)
	OnToolReturn func(context.Context, *ToolEvent)
}

// Merge returns hooks that fire h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnToolCall:   chain(h.OnToolCall, other.OnToolCall),
		OnToolReturn: chain(h.OnToolReturn, other.OnToolReturn),
	}
}

func chain(a, b func(context.Context, *ToolEvent)) func(context.Context, *ToolEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *ToolEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// AuditEntry is the durable record of one tool call.
type AuditEntry struct {
	CallID     string    `json:"call_id"`
	Timestamp  time.Time `json:"timestamp"`
	Tool       ToolName  `json:"tool"`
	Indices    []string  `json:"indices,omitempty"`
	Outcome    string    `json:"outcome"`
	ErrorKind  ErrorKind `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// NewAuditEntry summarises a finished tool event.
func NewAuditEntry(e *ToolEvent) AuditEntry {
	entry := AuditEntry{
		CallID:     e.CallID,
		Timestamp:  e.Timestamp,
		Tool:       e.ToolName,
		Indices:    e.Indices,
		Outcome:    "ok",
		DurationMS: e.Duration.Milliseconds(),
	}
	if e.Err != nil {
		entry.Outcome = "error"
		entry.ErrorKind = e.Err.Kind
		entry.Error = e.Err.Error()
	}
	return entry
}
