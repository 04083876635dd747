package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts events without blocking the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent)
}
