package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFollowRepository_CreateAndExists(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	follows := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")

	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID))

	exists, err := follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Direction matters.
	reverse, err := follows.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestGormFollowRepository_Create_Duplicate(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	follows := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")

	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID))
	err := follows.Create(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
}

func TestGormFollowRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	follows := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")

	require.NoError(t, follows.Create(ctx, alice.ID, bob.ID))
	require.NoError(t, follows.Delete(ctx, alice.ID, bob.ID))

	exists, err := follows.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = follows.Delete(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrFollowNotFound)
}

func TestGormFollowRepository_FollowersAndFollowing(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	follows := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")
	carol := createTestUser(t, users, "carol")

	// Bob and Carol follow Alice; Alice follows Carol.
	require.NoError(t, follows.Create(ctx, bob.ID, alice.ID))
	require.NoError(t, follows.Create(ctx, carol.ID, alice.ID))
	require.NoError(t, follows.Create(ctx, alice.ID, carol.ID))

	followers, err := follows.Followers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "bob", followers[0].Username)
	assert.Equal(t, "carol", followers[1].Username)

	following, err := follows.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carol", following[0].Username)

	ids, err := follows.FollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{carol.ID}, ids)

	nFollowers, err := follows.CountFollowers(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, nFollowers)

	nFollowing, err := follows.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, nFollowing)
}

func TestGormFollowRepository_FollowingIDs_Empty(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	follows := NewGormFollowRepository(db)

	alice := createTestUser(t, users, "alice")

	ids, err := follows.FollowingIDs(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
