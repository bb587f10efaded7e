package domain

import "time"

// Audit action and status constants.
const (
	AuditActionLogin  = "LOGIN"
	AuditActionFetch  = "FETCH"
	AuditActionGrant  = "GRANT"
	AuditActionRevoke = "REVOKE"

	AuditStatusAllowed = "ALLOWED"
	AuditStatusDenied  = "DENIED"
)

// AuditEntry records one security-relevant decision.
type AuditEntry struct {
	ID            int64
	PrincipalName string
	Action        string
	SourceName    string
	Status        string
	Detail        string
	CreatedAt     time.Time
}
