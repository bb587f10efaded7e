package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"lakegate/internal/domain"
)

// seedAdmin creates the bootstrap admin principal from ADMIN_USER and
// ADMIN_PASSWORD. Idempotent — an existing principal with that name is left
// untouched, password included, so rotating the env var never silently
// rewrites credentials.
func seedAdmin(ctx context.Context, principals domain.PrincipalRepository, username, password string) error {
	if username == "" {
		return nil // no bootstrap admin configured
	}
	if password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_USER is set")
	}

	if _, err := principals.GetByName(ctx, username); err == nil {
		return nil // already seeded
	} else {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = principals.Create(ctx, &domain.Principal{
		Name:         username,
		IsAdmin:      true,
		PasswordHash: string(hash),
	})
	if err != nil {
		// A concurrent seeder may have won the race; treat duplicates as done.
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			return nil
		}
		return err
	}
	return nil
}
