package service

import (
	"context"

	"lakegate/internal/domain"
)

// PermissionService manages source grants. Grant and revoke are themselves
// permission-gated: only admin principals may call them.
type PermissionService struct {
	permissions domain.PermissionRepository
	principals  domain.PrincipalRepository
	audit       domain.AuditRepository
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(
	permissions domain.PermissionRepository,
	principals domain.PrincipalRepository,
	audit domain.AuditRepository,
) *PermissionService {
	return &PermissionService{permissions: permissions, principals: principals, audit: audit}
}

// Grant gives targetUser access to sourceName. The target user must exist.
func (s *PermissionService) Grant(ctx context.Context, admin domain.ContextPrincipal, targetUser, sourceName string) (*domain.SourcePermission, error) {
	if err := s.requireAdmin(ctx, admin, domain.AuditActionGrant, sourceName); err != nil {
		return nil, err
	}
	if targetUser == "" || sourceName == "" {
		return nil, domain.ErrValidation("username and source_name are required")
	}
	if _, err := s.principals.GetByName(ctx, targetUser); err != nil {
		return nil, domain.ErrNotFound("user %q does not exist", targetUser)
	}

	perm, err := s.permissions.Grant(ctx, &domain.SourcePermission{
		UserName:   targetUser,
		SourceName: sourceName,
		GrantedBy:  admin.Name,
	})
	if err != nil {
		return nil, err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: admin.Name,
		Action:        domain.AuditActionGrant,
		SourceName:    sourceName,
		Status:        domain.AuditStatusAllowed,
		Detail:        "granted to " + targetUser,
	})
	return perm, nil
}

// Revoke removes targetUser's access to sourceName. Revoking a grant that
// does not exist fails with a NotFoundError.
func (s *PermissionService) Revoke(ctx context.Context, admin domain.ContextPrincipal, targetUser, sourceName string) error {
	if err := s.requireAdmin(ctx, admin, domain.AuditActionRevoke, sourceName); err != nil {
		return err
	}
	if targetUser == "" || sourceName == "" {
		return domain.ErrValidation("username and source_name are required")
	}
	if err := s.permissions.Revoke(ctx, targetUser, sourceName); err != nil {
		return err
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: admin.Name,
		Action:        domain.AuditActionRevoke,
		SourceName:    sourceName,
		Status:        domain.AuditStatusAllowed,
		Detail:        "revoked from " + targetUser,
	})
	return nil
}

// List returns the grants visible to the caller. A principal always sees its
// own grants; naming another user requires admin rights.
func (s *PermissionService) List(ctx context.Context, p domain.ContextPrincipal, targetUser string) ([]domain.SourcePermission, error) {
	if targetUser == "" || targetUser == p.Name {
		return s.permissions.ListForUser(ctx, p.Name)
	}
	if !p.IsAdmin {
		return nil, domain.ErrAccessDenied("only administrators may list another user's permissions")
	}
	if _, err := s.principals.GetByName(ctx, targetUser); err != nil {
		return nil, domain.ErrNotFound("user %q does not exist", targetUser)
	}
	return s.permissions.ListForUser(ctx, targetUser)
}

func (s *PermissionService) requireAdmin(ctx context.Context, p domain.ContextPrincipal, action, sourceName string) error {
	if p.IsAdmin {
		return nil
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		PrincipalName: p.Name,
		Action:        action,
		SourceName:    sourceName,
		Status:        domain.AuditStatusDenied,
		Detail:        "admin rights required",
	})
	return domain.ErrAccessDenied("only administrators may manage permissions")
}
