package ports

import (
	"context"

	"github.com/aretw0/esgate/pkg/domain"
)

// AuditSink records tool calls for later review.
// Failures are reported to the caller, who logs them; they never fail a tool call.
type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
