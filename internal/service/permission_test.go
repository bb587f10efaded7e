package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakegate/internal/domain"
)

var (
	adminPrincipal   = domain.ContextPrincipal{Name: "root", IsAdmin: true}
	regularPrincipal = domain.ContextPrincipal{Name: "analyst"}
)

func testPermissionService(t *testing.T) *PermissionService {
	t.Helper()
	principalRepo, permRepo, auditRepo := testRepos(t)
	ctx := context.Background()
	for _, p := range []*domain.Principal{
		{Name: "root", IsAdmin: true},
		{Name: "analyst"},
	} {
		_, err := principalRepo.Create(ctx, p)
		require.NoError(t, err)
	}
	return NewPermissionService(permRepo, principalRepo, auditRepo)
}

func TestPermissionService_GrantRequiresAdmin(t *testing.T) {
	svc := testPermissionService(t)

	_, err := svc.Grant(context.Background(), regularPrincipal, "analyst", "sales")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	err = svc.Revoke(context.Background(), regularPrincipal, "analyst", "sales")
	require.ErrorAs(t, err, &denied)
}

func TestPermissionService_GrantUnknownUser(t *testing.T) {
	svc := testPermissionService(t)

	_, err := svc.Grant(context.Background(), adminPrincipal, "ghost", "sales")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPermissionService_GrantListRevoke(t *testing.T) {
	svc := testPermissionService(t)
	ctx := context.Background()

	perm, err := svc.Grant(ctx, adminPrincipal, "analyst", "sales")
	require.NoError(t, err)
	assert.Equal(t, "root", perm.GrantedBy)

	// The analyst sees their own grants without admin rights.
	perms, err := svc.List(ctx, regularPrincipal, "")
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "sales", perms[0].SourceName)

	require.NoError(t, svc.Revoke(ctx, adminPrincipal, "analyst", "sales"))

	perms, err = svc.List(ctx, regularPrincipal, "")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestPermissionService_RevokeMissingGrant(t *testing.T) {
	svc := testPermissionService(t)

	err := svc.Revoke(context.Background(), adminPrincipal, "analyst", "sales")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPermissionService_ListOtherUserRequiresAdmin(t *testing.T) {
	svc := testPermissionService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, adminPrincipal, "analyst", "sales")
	require.NoError(t, err)

	_, err = svc.List(ctx, regularPrincipal, "root")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	perms, err := svc.List(ctx, adminPrincipal, "analyst")
	require.NoError(t, err)
	assert.Len(t, perms, 1)
}
