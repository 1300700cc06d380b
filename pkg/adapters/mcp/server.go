package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/esgate/pkg/domain"
)

// IndicesURI is the resource exposing the configured index aliases.
const IndicesURI = "esgate://indices"

// Dispatcher is the part of tools.Dispatcher the server needs.
type Dispatcher interface {
	Call(ctx context.Context, name string, args map[string]any) (any, error)
	Descriptors() []domain.ToolDescriptor
}

// Server exposes the dispatcher's tools over the Model Context Protocol.
type Server struct {
	tools     Dispatcher
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(tools Dispatcher, version string) *Server {
	s := &Server{
		tools: tools,
		mcpServer: server.NewMCPServer("esgate", version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	for _, desc := range s.tools.Descriptors() {
		name := string(desc.Name)
		tool := mcp.NewToolWithRawSchema(name, desc.Description, desc.InputSchema)
		s.mcpServer.AddTool(tool, s.handler(name))
	}
}

// handler adapts one tool. Tool failures are reported as tool-error results so the
// client sees the message; only transport problems become protocol errors.
func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := s.tools.Call(ctx, name, request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("encode %s output: %w", name, err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(IndicesURI, "Configured index aliases",
		mcp.WithResourceDescription("Alias to concrete index mapping, allow-list patterns and usage hints"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		out, err := s.tools.Call(ctx, string(domain.ToolListIndices), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list indices: %w", err)
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode indices: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      IndicesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
