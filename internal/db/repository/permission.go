package repository

import (
	"context"
	"database/sql"

	"lakegate/internal/domain"
)

var _ domain.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo implements domain.PermissionRepository using SQLite.
type PermissionRepo struct {
	db *sql.DB
}

// NewPermissionRepo creates a new PermissionRepo.
func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// Grant upserts a permission keyed on (user_name, source_name). Re-granting
// refreshes granted_by and granted_at rather than failing.
func (r *PermissionRepo) Grant(ctx context.Context, g *domain.SourcePermission) (*domain.SourcePermission, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO source_permissions (user_name, source_name, granted_by)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_name, source_name)
		 DO UPDATE SET granted_by = excluded.granted_by, granted_at = CURRENT_TIMESTAMP
		 RETURNING id, user_name, source_name, granted_by, granted_at`,
		g.UserName, g.SourceName, g.GrantedBy)

	var p domain.SourcePermission
	if err := row.Scan(&p.ID, &p.UserName, &p.SourceName, &p.GrantedBy, &p.GrantedAt); err != nil {
		return nil, mapDBError(err)
	}
	return &p, nil
}

// Revoke removes a permission by compound key. Revoking a grant that does
// not exist fails with a NotFoundError.
func (r *PermissionRepo) Revoke(ctx context.Context, userName, sourceName string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM source_permissions WHERE user_name = ? AND source_name = ?`,
		userName, sourceName)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("no permission on %q for user %q", sourceName, userName)
	}
	return nil
}

// ListForUser returns every permission held by the named user, ordered by
// source name for deterministic responses.
func (r *PermissionRepo) ListForUser(ctx context.Context, userName string) ([]domain.SourcePermission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_name, source_name, granted_by, granted_at
		 FROM source_permissions WHERE user_name = ? ORDER BY source_name`,
		userName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.SourcePermission
	for rows.Next() {
		var p domain.SourcePermission
		if err := rows.Scan(&p.ID, &p.UserName, &p.SourceName, &p.GrantedBy, &p.GrantedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Has reports whether the user holds a permission on the source.
func (r *PermissionRepo) Has(ctx context.Context, userName, sourceName string) (bool, error) {
	var cnt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM source_permissions WHERE user_name = ? AND source_name = ?`,
		userName, sourceName).Scan(&cnt)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
