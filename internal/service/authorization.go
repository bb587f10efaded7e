// Package service contains the application services: authorization,
// permission management, token issuance, transaction fetch, and metrics.
package service

import (
	"context"

	"lakegate/internal/domain"
)

// AuthorizationService decides whether a principal may query a named source.
// The model is default-deny: no grant row, no access. Admin principals
// bypass the grant check entirely.
type AuthorizationService struct {
	permissions domain.PermissionRepository
}

// NewAuthorizationService creates an AuthorizationService backed by the
// permission repository.
func NewAuthorizationService(permissions domain.PermissionRepository) *AuthorizationService {
	return &AuthorizationService{permissions: permissions}
}

// Authorize returns nil when the principal may access the source and an
// AccessDeniedError otherwise. It runs strictly before any backing-store
// query, and the denial message never discloses whether the source exists.
func (s *AuthorizationService) Authorize(ctx context.Context, p domain.ContextPrincipal, sourceName string) error {
	if p.Name == "" {
		return domain.ErrAccessDenied("unauthenticated")
	}
	if p.IsAdmin {
		return nil
	}
	ok, err := s.permissions.Has(ctx, p.Name, sourceName)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccessDenied("principal %q is not authorized for source %q", p.Name, sourceName)
	}
	return nil
}
