package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/rpc"
)

// MaxRequestBytes bounds the size of one POST /rpc body.
const MaxRequestBytes = 1 << 20

// RPC answers one JSON-RPC message. *rpc.Server implements it.
type RPC interface {
	HandleLine(ctx context.Context, line []byte) *rpc.Response
}

// Catalog lists the tools. *tools.Dispatcher implements it.
type Catalog interface {
	Descriptors() []domain.ToolDescriptor
}

// Server serves the JSON-RPC endpoint and its companions over HTTP.
type Server struct {
	RPC      RPC
	Catalog  Catalog
	Gatherer prometheus.Gatherer
}

// NewHandler creates the HTTP handler. A nil gatherer leaves /metrics unmounted.
func NewHandler(rpcServer RPC, catalog Catalog, gatherer prometheus.Gatherer) http.Handler {
	s := &Server{RPC: rpcServer, Catalog: catalog, Gatherer: gatherer}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Post("/rpc", s.HandleRPC)
	r.Get("/tools", s.ListTools)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleRPC handles POST /rpc. Protocol errors are JSON-RPC errors with status 200,
// as they would be on the line transport.
func (s *Server) HandleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("RPC: Invalid request body", "error", err)
		return
	}

	writeJSON(w, s.RPC.HandleLine(r.Context(), body))
}

type toolView struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ListTools handles GET /tools.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	descs := s.Catalog.Descriptors()
	out := make([]toolView, 0, len(descs))
	for _, d := range descs {
		out = append(out, toolView{Name: string(d.Name), Description: d.Description, InputSchema: d.InputSchema})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// ListenAndServe serves handler on addr until ctx ends, then shuts down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "address", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
