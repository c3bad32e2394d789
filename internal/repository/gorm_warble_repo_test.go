package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

func postTestWarble(t *testing.T, repo *GormWarbleRepository, authorID uint, text string) *domain.Warble {
	t.Helper()

	w := &domain.Warble{AuthorID: authorID, Text: text}
	require.NoError(t, repo.Create(context.Background(), w))
	return w
}

func TestGormWarbleRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	w := postTestWarble(t, warbles, alice.ID, "hello world")
	assert.NotZero(t, w.ID)
	assert.False(t, w.Timestamp.IsZero())

	got, err := warbles.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)
	assert.Equal(t, alice.ID, got.AuthorID)
	assert.Equal(t, "alice", got.AuthorName)
}

func TestGormWarbleRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	warbles := NewGormWarbleRepository(db)

	_, err := warbles.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrWarbleNotFound)
}

func TestGormWarbleRepository_ByAuthor_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	postTestWarble(t, warbles, alice.ID, "first")
	postTestWarble(t, warbles, alice.ID, "second")
	postTestWarble(t, warbles, alice.ID, "third")

	got, err := warbles.ByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
	assert.Equal(t, "first", got[2].Text)
}

func TestGormWarbleRepository_ByAuthors(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")
	carol := createTestUser(t, users, "carol")

	postTestWarble(t, warbles, alice.ID, "from alice")
	postTestWarble(t, warbles, bob.ID, "from bob")
	postTestWarble(t, warbles, carol.ID, "from carol")

	got, err := warbles.ByAuthors(ctx, []uint{alice.ID, bob.ID}, 100)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "from bob", got[0].Text)
	assert.Equal(t, "from alice", got[1].Text)
}

func TestGormWarbleRepository_ByAuthors_Limit(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	for i := 0; i < 5; i++ {
		postTestWarble(t, warbles, alice.ID, "warble")
	}

	got, err := warbles.ByAuthors(ctx, []uint{alice.ID}, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestGormWarbleRepository_ByAuthors_Empty(t *testing.T) {
	db := newTestDB(t)
	warbles := NewGormWarbleRepository(db)

	got, err := warbles.ByAuthors(context.Background(), nil, 100)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGormWarbleRepository_ByIDs(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	w1 := postTestWarble(t, warbles, alice.ID, "one")
	w2 := postTestWarble(t, warbles, alice.ID, "two")
	postTestWarble(t, warbles, alice.ID, "three")

	got, err := warbles.ByIDs(ctx, []uint{w1.ID, w2.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Text)
	assert.Equal(t, "one", got[1].Text)
}

func TestGormWarbleRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")
	w := postTestWarble(t, warbles, alice.ID, "doomed")
	require.NoError(t, warbles.CreateLike(ctx, bob.ID, w.ID))

	require.NoError(t, warbles.Delete(ctx, w.ID))

	_, err := warbles.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWarbleNotFound)

	liked, err := warbles.LikedBy(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, liked)

	err = warbles.Delete(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWarbleNotFound)
}

func TestGormWarbleRepository_Likes(t *testing.T) {
	db := newTestDB(t)
	users := NewGormUserRepository(db)
	warbles := NewGormWarbleRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")
	w := postTestWarble(t, warbles, alice.ID, "likeable")

	require.NoError(t, warbles.CreateLike(ctx, bob.ID, w.ID))

	err := warbles.CreateLike(ctx, bob.ID, w.ID)
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	liked, err := warbles.LikedBy(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, liked, 1)
	assert.Equal(t, "likeable", liked[0].Text)

	require.NoError(t, warbles.DeleteLike(ctx, bob.ID, w.ID))

	err = warbles.DeleteLike(ctx, bob.ID, w.ID)
	assert.ErrorIs(t, err, ErrLikeNotFound)
}
