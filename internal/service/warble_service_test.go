package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarbleService_Post(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice")
	w := env.post(t, alice.ID, "hello world")
	assert.NotZero(t, w.ID)
	assert.Equal(t, alice.ID, w.AuthorID)
	assert.False(t, w.Timestamp.IsZero())
}

func TestWarbleService_Post_TrimsWhitespace(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice")
	w := env.post(t, alice.ID, "  hello  ")
	assert.Equal(t, "hello", w.Text)
}

func TestWarbleService_Post_EmptyText(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice")

	_, err := env.warbles.Post(context.Background(), alice.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestWarbleService_Delete_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	w := env.post(t, alice.ID, "mine")

	err := env.warbles.Delete(ctx, bob.ID, w.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Still there.
	got, err := env.warbles.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Text)

	require.NoError(t, env.warbles.Delete(ctx, alice.ID, w.ID))
	_, err = env.warbles.Get(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWarbleNotFound)
}

func TestWarbleService_Delete_Unknown(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice")

	err := env.warbles.Delete(context.Background(), alice.ID, 999)
	assert.ErrorIs(t, err, ErrWarbleNotFound)
}

func TestWarbleService_Like(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	w := env.post(t, alice.ID, "likeable")

	require.NoError(t, env.warbles.Like(ctx, bob.ID, w.ID))

	liked, err := env.warbles.LikedBy(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, "likeable", liked[0].Text)
}

func TestWarbleService_Like_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	w := env.post(t, alice.ID, "likeable")

	require.NoError(t, env.warbles.Like(ctx, bob.ID, w.ID))
	require.NoError(t, env.warbles.Like(ctx, bob.ID, w.ID))

	liked, err := env.warbles.LikedBy(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, liked, 1)
}

func TestWarbleService_Like_OwnWarble(t *testing.T) {
	env := newTestEnv(t)

	alice := env.signup(t, "alice")
	w := env.post(t, alice.ID, "self-regard")

	err := env.warbles.Like(context.Background(), alice.ID, w.ID)
	assert.ErrorIs(t, err, ErrSelfLike)
}

func TestWarbleService_Unlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	w := env.post(t, alice.ID, "likeable")

	require.NoError(t, env.warbles.Like(ctx, bob.ID, w.ID))
	require.NoError(t, env.warbles.Unlike(ctx, bob.ID, w.ID))

	liked, err := env.warbles.LikedBy(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)

	// Unliking again is a quiet no-op.
	assert.NoError(t, env.warbles.Unlike(ctx, bob.ID, w.ID))
}

func TestWarbleService_ByAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.signup(t, "alice")
	env.post(t, alice.ID, "first")
	env.post(t, alice.ID, "second")

	got, err := env.warbles.ByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Text)
	assert.Equal(t, "first", got[1].Text)
}
