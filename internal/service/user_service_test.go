package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

func TestUserService_Signup(t *testing.T) {
	env := newTestEnv(t)

	user := env.signup(t, "alice")
	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.DefaultImageURL, user.ImageURL)
	assert.Equal(t, domain.DefaultHeaderImageURL, user.HeaderImageURL)

	// The stored hash verifies against the plaintext and is not the plaintext.
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestUserService_Signup_CustomImage(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Signup(context.Background(), &domain.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		ImageURL: "https://example.com/me.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/me.png", user.ImageURL)
}

func TestUserService_Signup_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signup(t, "alice")

	_, err := env.users.Signup(ctx, &domain.SignupRequest{
		Username: "alice",
		Email:    "fresh@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = env.users.Signup(ctx, &domain.SignupRequest{
		Username: "fresh",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signup(t, "alice")

	user, err := env.users.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestUserService_Authenticate_BadPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signup(t, "alice")

	_, err := env.users.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Authenticate_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	// Unknown usernames and wrong passwords are indistinguishable.
	_, err := env.users.Authenticate(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	carol := env.signup(t, "carol")

	require.NoError(t, env.graph.Follow(ctx, bob.ID, alice.ID))
	require.NoError(t, env.graph.Follow(ctx, carol.ID, alice.ID))
	require.NoError(t, env.graph.Follow(ctx, alice.ID, bob.ID))

	profile, err := env.users.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	assert.EqualValues(t, 2, profile.Followers)
	assert.EqualValues(t, 1, profile.Following)
}

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")

	updated, err := env.users.UpdateProfile(ctx, alice.ID, &domain.UpdateProfileRequest{
		Username: "alice2",
		Email:    "alice2@example.com",
		Bio:      "new bio",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "new bio", updated.Bio)
	// Cleared image fields fall back to the defaults.
	assert.Equal(t, domain.DefaultImageURL, updated.ImageURL)
	assert.Equal(t, domain.DefaultHeaderImageURL, updated.HeaderImageURL)
}

func TestUserService_UpdateProfile_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")

	_, err := env.users.UpdateProfile(ctx, alice.ID, &domain.UpdateProfileRequest{
		Username: "alice2",
		Email:    "alice2@example.com",
		Password: "not-the-password",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	// Nothing changed.
	user, err := env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	require.NoError(t, env.graph.Follow(ctx, bob.ID, alice.ID))
	env.post(t, alice.ID, "goodbye world")

	sess, err := env.sessions.Create(ctx, alice.ID)
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, alice.ID))

	_, err = env.users.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Every live session for the account is revoked.
	_, err = env.sessions.Get(ctx, sess.ID)
	assert.Error(t, err)

	// Bob no longer follows anyone.
	following, err := env.graph.Following(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestUserService_ListUsers_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.signup(t, "alice")
	env.signup(t, "alina")
	env.signup(t, "bob")

	all, err := env.users.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := env.users.ListUsers(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "alice", matched[0].Username)
	assert.Equal(t, "alina", matched[1].Username)
}
