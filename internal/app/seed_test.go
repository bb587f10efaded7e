package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lakegate/internal/db"
	"lakegate/internal/db/repository"
)

func TestSeedAdmin(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := repository.NewPrincipalRepo(writeDB)
	ctx := context.Background()

	require.NoError(t, seedAdmin(ctx, repo, "root", "hunter2"))

	p, err := repo.GetByName(ctx, "root")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("hunter2")))

	// Re-seeding with a different password leaves the stored hash alone.
	require.NoError(t, seedAdmin(ctx, repo, "root", "changed"))
	p2, err := repo.GetByName(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, p.PasswordHash, p2.PasswordHash)
}

func TestSeedAdmin_NoUserConfigured(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := repository.NewPrincipalRepo(writeDB)

	require.NoError(t, seedAdmin(context.Background(), repo, "", ""))
}

func TestSeedAdmin_PasswordRequired(t *testing.T) {
	writeDB, _ := db.OpenTestSQLite(t)
	repo := repository.NewPrincipalRepo(writeDB)

	require.Error(t, seedAdmin(context.Background(), repo, "root", ""))
}
