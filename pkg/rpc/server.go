package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/esgate/pkg/domain"
)

// Dispatcher is the part of tools.Dispatcher the server needs.
type Dispatcher interface {
	Call(ctx context.Context, name string, args map[string]any) (any, error)
	Descriptors() []domain.ToolDescriptor
}

// Server answers JSON-RPC requests with a Dispatcher.
type Server struct {
	tools   Dispatcher
	version string
	verbose bool
	logger  *slog.Logger

	mu sync.Mutex // serialises writes to the output
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithVerbose includes error traces in tool failure responses.
func WithVerbose(verbose bool) Option {
	return func(s *Server) { s.verbose = verbose }
}

// WithLogger sets the diagnostics logger. It must not write to the output stream.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a server for tools.
func NewServer(tools Dispatcher, opts ...Option) *Server {
	s := &Server{
		tools:   tools,
		version: "dev",
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve writes the ready notification and then answers one request per input line
// until in is exhausted or ctx is cancelled. Cancellation is observed between lines.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.tools == nil {
		return errors.New("rpc: nil dispatcher")
	}
	if err := s.write(out, Notification{
		JSONRPC: jsonrpcVersion,
		Method:  "ready",
		Params:  map[string]bool{"ok": true},
	}); err != nil {
		return err
	}

	r := bufio.NewReader(in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, readErr := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			if resp := s.HandleLine(ctx, line); resp != nil {
				if err := s.write(out, resp); err != nil {
					return err
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("rpc: read: %w", readErr)
		}
	}
}

// HandleLine decodes one raw message and answers it. Numbers in arguments are kept
// as json.Number so they reach the backend unchanged.
func (s *Server) HandleLine(ctx context.Context, line []byte) *Response {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil || dec.More() {
		return errorResponse(nil, CodeParseError, "Parse error")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return errorResponse(nil, CodeInvalidRequest, "Invalid Request")
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		// Object with wrongly typed envelope fields.
		return errorResponse(rawID(obj), CodeInvalidRequest, "Invalid Request")
	}
	return s.Handle(ctx, req)
}

// Handle answers a decoded request.
func (s *Server) Handle(ctx context.Context, req Request) *Response {
	if req.JSONRPC != jsonrpcVersion {
		return errorResponse(req.ID, CodeInvalidRequest, "Invalid jsonrpc version")
	}

	s.logger.Debug("rpc request", "method", req.Method, "id", string(normalizeID(req.ID)))

	switch req.Method {
	case "initialize":
		return result(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: serverName, Version: s.version},
		})
	case "list_tools":
		descs := s.tools.Descriptors()
		out := make([]toolDescriptor, 0, len(descs))
		for _, d := range descs {
			out = append(out, toolDescriptor{
				Name:        string(d.Name),
				Description: d.Description,
				InputSchema: d.InputSchema,
			})
		}
		return result(req.ID, out)
	case "call_tool":
		return s.callTool(ctx, req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, "Method not found")
	}
}

func (s *Server) callTool(ctx context.Context, req Request) *Response {
	var params callToolParams
	if len(req.Params) > 0 && !bytes.Equal(req.Params, nullID) {
		dec := json.NewDecoder(bytes.NewReader(req.Params))
		dec.UseNumber()
		if err := dec.Decode(&params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "Invalid params")
		}
	}

	output, err := s.tools.Call(ctx, params.Name, params.Arguments)
	if err == nil {
		return result(req.ID, callToolResult{Name: params.Name, Output: output})
	}
	if errors.Is(err, domain.ErrToolNotFound) {
		return errorResponse(req.ID, CodeMethodNotFound, "Tool not found")
	}

	toolErr := domain.NewToolError(domain.ToolName(params.Name), err)
	resp := errorResponse(req.ID, CodeToolFailure, toolErr.Error())
	resp.Error.Data = &ErrorData{Kind: string(toolErr.Kind)}
	if s.verbose {
		resp.Error.Data.Trace = toolErr.Trace()
	}
	return resp
}

func (s *Server) write(out io.Writer, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("rpc: write: %w", err)
	}
	return nil
}

// rawID recovers the id of an object whose envelope failed to decode.
func rawID(obj map[string]any) json.RawMessage {
	id, ok := obj["id"]
	if !ok {
		return nil
	}
	data, err := json.Marshal(id)
	if err != nil {
		return nil
	}
	return data
}
