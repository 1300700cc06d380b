package redis

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/esgate/pkg/domain"
)

// DefaultMaxEntries caps the audit list when no limit is configured.
const DefaultMaxEntries = 10000

// AuditSink implements ports.AuditSink on a capped Redis list, newest first.
type AuditSink struct {
	client     *backend.Client
	key        string
	maxEntries int64
}

// Option configures an AuditSink.
type Option func(*AuditSink)

// WithKey sets the list key.
func WithKey(key string) Option {
	return func(s *AuditSink) {
		s.key = key
	}
}

// WithMaxEntries sets how many entries are kept. Older entries are trimmed.
func WithMaxEntries(n int64) Option {
	return func(s *AuditSink) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// New creates an audit sink with its own client.
func New(address, password string, db int, opts ...Option) *AuditSink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates an audit sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *AuditSink {
	s := &AuditSink{
		client:     client,
		key:        "esgate:audit",
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record pushes entry to the head of the list and trims the tail in one round trip.
func (s *AuditSink) Record(ctx context.Context, entry domain.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.maxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write audit entry to redis: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *AuditSink) Recent(ctx context.Context, n int64) ([]domain.AuditEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	vals, err := s.client.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entries: %w", err)
	}
	entries := make([]domain.AuditEntry, 0, len(vals))
	for _, v := range vals {
		var e domain.AuditEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("corrupt audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Ping checks connectivity.
func (s *AuditSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *AuditSink) Close() error {
	return s.client.Close()
}
