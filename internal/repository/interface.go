package repository

import (
	"context"
	"errors"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")

	ErrFollowNotFound   = errors.New("follow relationship not found")
	ErrAlreadyFollowing = errors.New("already following")

	ErrWarbleNotFound = errors.New("warble not found")
	ErrLikeNotFound   = errors.New("like not found")
	ErrAlreadyLiked   = errors.New("already liked")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns all users, or those whose username contains q when q is
	// non-empty.
	List(ctx context.Context, q string) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user together with their warbles, their likes, likes
	// on their warbles, and follow edges in both directions, atomically.
	Delete(ctx context.Context, id uint) error
}

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]domain.User, error)
	Following(ctx context.Context, userID uint) ([]domain.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// WarbleRepository defines persistence operations for warbles and likes.
type WarbleRepository interface {
	Create(ctx context.Context, warble *domain.Warble) error
	GetByID(ctx context.Context, id uint) (*domain.Warble, error)
	Delete(ctx context.Context, id uint) error
	ByAuthor(ctx context.Context, authorID uint) ([]domain.Warble, error)
	// ByAuthors returns the most recent warbles authored by any of authorIDs,
	// ordered timestamp descending (id descending on ties), capped at limit.
	ByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]domain.Warble, error)
	// ByIDs returns the given warbles in the same feed order.
	ByIDs(ctx context.Context, ids []uint) ([]domain.Warble, error)
	CreateLike(ctx context.Context, userID, warbleID uint) error
	DeleteLike(ctx context.Context, userID, warbleID uint) error
	LikedBy(ctx context.Context, userID uint) ([]domain.Warble, error)
}
