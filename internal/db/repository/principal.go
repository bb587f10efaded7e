package repository

import (
	"context"
	"database/sql"

	"lakegate/internal/domain"
)

var _ domain.PrincipalRepository = (*PrincipalRepo)(nil)

// PrincipalRepo implements domain.PrincipalRepository using SQLite.
type PrincipalRepo struct {
	db *sql.DB
}

// NewPrincipalRepo creates a new PrincipalRepo.
func NewPrincipalRepo(db *sql.DB) *PrincipalRepo {
	return &PrincipalRepo{db: db}
}

// Create inserts a new principal and returns it with its assigned ID.
func (r *PrincipalRepo) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO principals (name, is_admin, password_hash) VALUES (?, ?, ?)
		 RETURNING id, name, is_admin, password_hash, created_at`,
		p.Name, boolToInt(p.IsAdmin), p.PasswordHash)
	return scanPrincipal(row)
}

// GetByName looks a principal up by its unique name.
func (r *PrincipalRepo) GetByName(ctx context.Context, name string) (*domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, is_admin, password_hash, created_at FROM principals WHERE name = ?`,
		name)
	return scanPrincipal(row)
}

func scanPrincipal(row *sql.Row) (*domain.Principal, error) {
	var p domain.Principal
	var isAdmin int64
	if err := row.Scan(&p.ID, &p.Name, &isAdmin, &p.PasswordHash, &p.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	p.IsAdmin = isAdmin != 0
	return &p, nil
}
