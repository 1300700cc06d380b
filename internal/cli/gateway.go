package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/esgate"
	"github.com/aretw0/esgate/internal/config"
	"github.com/aretw0/esgate/pkg/adapters/elasticsearch"
	"github.com/aretw0/esgate/pkg/adapters/memory"
	"github.com/aretw0/esgate/pkg/adapters/redis"
	"github.com/aretw0/esgate/pkg/ports"
	"github.com/aretw0/esgate/pkg/tools"
)

// GatewayOptions controls how a gateway is assembled from configuration.
type GatewayOptions struct {
	// DryRun swaps the Elasticsearch client for a recording in-memory backend and
	// skips credential validation.
	DryRun bool
}

// Gateway is an assembled gateway plus the recording backend in dry-run mode.
type Gateway struct {
	*esgate.Gateway
	Recorder *memory.Backend
}

// NewGateway builds the gateway described by cfg with standard CLI conventions.
func NewGateway(ctx context.Context, cfg config.Config, logger *slog.Logger, opts GatewayOptions) (*Gateway, error) {
	p, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	var backend ports.Backend
	var recorder *memory.Backend
	if opts.DryRun {
		recorder = memory.NewBackend()
		backend = recorder
	} else {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		es, err := elasticsearch.New(elasticsearch.Config{
			Endpoint:  cfg.Endpoint,
			APIKey:    cfg.APIKey,
			Username:  cfg.Username,
			Password:  cfg.Password,
			VerifyTLS: cfg.VerifyTLS,
			Timeout:   cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("error initializing elasticsearch client: %w", err)
		}
		backend = es
	}

	gwOpts := []esgate.Option{
		esgate.WithLogger(logger),
		esgate.WithVerbose(cfg.Verbose),
		esgate.WithSearchFields(tools.SearchFields{Fields: cfg.SearchFields, Source: cfg.SourceFields}),
	}
	if cfg.AuditRedisAddr != "" {
		sink := redis.New(cfg.AuditRedisAddr, "", 0)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := sink.Ping(pingCtx); err != nil {
			logger.Warn("audit store unreachable, entries will be dropped until it recovers",
				"addr", cfg.AuditRedisAddr, "error", err)
		}
		cancel()
		gwOpts = append(gwOpts, esgate.WithAuditSink(sink))
	}

	gw, err := esgate.New(p, backend, gwOpts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("gateway ready",
		"aliases", len(cfg.Indices),
		"allowed", cfg.AllowedPatterns,
		"max_size", cfg.MaxSearchSize,
		"require_time_range", cfg.RequireTimeRange,
		"dry_run", opts.DryRun,
	)
	return &Gateway{Gateway: gw, Recorder: recorder}, nil
}
