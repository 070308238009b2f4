package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_GetOrCreate_Idempotent(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	first, err := r.users.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	second, err := r.users.GetOrCreate(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alice", second.Username)
}

func TestUserRepo_GetOrCreate_DistinctUsers(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	alice, err := r.users.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	bob, err := r.users.GetOrCreate(ctx, "bob")
	require.NoError(t, err)

	assert.NotEqual(t, alice.ID, bob.ID)
	assert.False(t, bob.CreatedAt.IsZero())
}
