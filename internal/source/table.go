package source

import (
	"context"
	"database/sql"
	"fmt"

	"lakegate/internal/domain"
)

var _ domain.SourceAdapter = (*WarehouseAdapter)(nil)

// WarehouseAdapter reads transaction records from tables of a relational
// warehouse. Table names are resolved against the schema catalog before they
// are interpolated, so only identifiers that actually exist reach the query.
type WarehouseAdapter struct {
	db *sql.DB
}

// NewWarehouseAdapter creates a WarehouseAdapter over the given warehouse
// handle.
func NewWarehouseAdapter(db *sql.DB) *WarehouseAdapter {
	return &WarehouseAdapter{db: db}
}

// internalTables are bookkeeping tables that never surface as sources.
var internalTables = map[string]bool{
	"sqlite_sequence":  true,
	"goose_db_version": true,
}

// Sources lists the warehouse's data tables, ordered by name.
func (a *WarehouseAdapter) Sources(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list warehouse tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if !internalTables[name] {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

// Fetch returns every record in the named table matching the spec. Unknown
// tables fail with a NotFoundError before any data query runs.
func (a *WarehouseAdapter) Fetch(ctx context.Context, sourceName string, spec domain.FilterSpec) ([]domain.TransactionRecord, error) {
	if err := a.resolveTable(ctx, sourceName); err != nil {
		return nil, err
	}

	where, args := WhereClause(spec)
	query := fmt.Sprintf(`SELECT %s FROM "%s"%s`, selectList(), sourceName, where)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query warehouse table %q: %w", sourceName, err)
	}
	return scanRecords(rows)
}

// resolveTable checks the exact table name exists in the catalog. Names are
// case-sensitive opaque strings; no normalization is applied.
func (a *WarehouseAdapter) resolveTable(ctx context.Context, name string) error {
	if name == "" || internalTables[name] {
		return domain.ErrNotFound("unknown warehouse table %q", name)
	}
	var cnt int64
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&cnt)
	if err != nil {
		return fmt.Errorf("resolve warehouse table %q: %w", name, err)
	}
	if cnt == 0 {
		return domain.ErrNotFound("unknown warehouse table %q", name)
	}
	return nil
}
