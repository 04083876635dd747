package domain

import "time"

// AuditAction names a security-relevant operation.
type AuditAction string

const (
	AuditRegister       AuditAction = "auth.register"
	AuditLogin          AuditAction = "auth.login"
	AuditRefresh        AuditAction = "auth.refresh"
	AuditLogout         AuditAction = "auth.logout"
	AuditAdminUpdate    AuditAction = "admin.user_update"
	AuditAdminDelete    AuditAction = "admin.user_delete"
	AuditAdminBootstrap AuditAction = "admin.bootstrap"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditEvent records who did what to whom.
type AuditEvent struct {
	Action     AuditAction
	ActorID    string
	TargetID   string
	Outcome    string
	Detail     string
	RequestID  string
	OccurredAt time.Time
}
