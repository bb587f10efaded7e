package domain

import "time"

// Principal is an authenticated caller identity stored in the metastore.
// PasswordHash is a bcrypt hash; empty for principals that only authenticate
// through an external IdP or API keys.
type Principal struct {
	ID           int64
	Name         string
	IsAdmin      bool
	PasswordHash string
	CreatedAt    time.Time
}
