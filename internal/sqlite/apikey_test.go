package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/groupmeet/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository_AddResolve(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAPIKeyRepository(db)

	require.NoError(t, repo.AddKey(ctx, "secret-token", "alice", "laptop"))

	userID, err := repo.ResolveUser(ctx, "secret-token")
	require.NoError(t, err)
	require.Equal(t, "alice", userID)

	_, err = repo.ResolveUser(ctx, "other-token")
	require.ErrorIs(t, err, repository.ErrNotFound)

	var stored string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT key_hash FROM api_keys`).Scan(&stored))
	require.Equal(t, HashToken("secret-token"), stored)
	require.NotContains(t, stored, "secret")
}

func TestAPIKeyRepository_AddKeyErrors(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAPIKeyRepository(db)

	require.ErrorIs(t, repo.AddKey(ctx, "", "alice", ""), repository.ErrInvalidInput)
	require.ErrorIs(t, repo.AddKey(ctx, "t", " ", ""), repository.ErrInvalidInput)

	require.NoError(t, repo.AddKey(ctx, "t", "alice", ""))
	require.ErrorIs(t, repo.AddKey(ctx, "t", "bob", ""), repository.ErrConflict)
}
