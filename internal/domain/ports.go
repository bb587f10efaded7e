package domain

import "context"

// SourceAdapter fetches transaction records from one backing store. The two
// implementations (parquet lake, SQL warehouse) must produce identical record
// sets for identical FilterSpec values over logically identical data. Adapters
// never authorize; that happens strictly before Fetch is reached.
type SourceAdapter interface {
	// Fetch returns every record in the named source matching the spec.
	// Unknown sources fail with a NotFoundError.
	Fetch(ctx context.Context, sourceName string, spec FilterSpec) ([]TransactionRecord, error)

	// Sources lists the source names this adapter can resolve.
	Sources(ctx context.Context) ([]string, error)
}

// PrincipalRepository persists caller identities.
type PrincipalRepository interface {
	Create(ctx context.Context, p *Principal) (*Principal, error)
	GetByName(ctx context.Context, name string) (*Principal, error)
}

// PermissionRepository persists the (user, source) grant relation.
// Grant is an idempotent upsert keyed on (user_name, source_name).
type PermissionRepository interface {
	Grant(ctx context.Context, g *SourcePermission) (*SourcePermission, error)
	Revoke(ctx context.Context, userName, sourceName string) error
	ListForUser(ctx context.Context, userName string) ([]SourcePermission, error)
	Has(ctx context.Context, userName, sourceName string) (bool, error)
}

// AuditRepository records security decisions.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
}
