package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
)

// APIKeyRepo resolves API keys to principal names. Keys are stored as
// SHA-256 hashes; the raw key never touches the metastore.
type APIKeyRepo struct {
	db *sql.DB
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{db: db}
}

// HashKey returns the hex SHA-256 digest of a raw API key.
func HashKey(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Create stores the hash of a raw key for the named principal.
func (r *APIKeyRepo) Create(ctx context.Context, principalName, rawKey string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, principal_name) VALUES (?, ?)`,
		HashKey(rawKey), principalName)
	return mapDBError(err)
}

// GetPrincipalNameByHash resolves a key hash to its principal name.
func (r *APIKeyRepo) GetPrincipalNameByHash(ctx context.Context, hash string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT principal_name FROM api_keys WHERE key_hash = ?`, hash).Scan(&name)
	if err != nil {
		return "", mapDBError(err)
	}
	return name, nil
}
