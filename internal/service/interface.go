package service

import (
	"context"
	"errors"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrWrongPassword      = errors.New("wrong password")

	ErrSelfFollow = errors.New("cannot follow yourself")

	ErrWarbleNotFound = errors.New("warble not found")
	ErrEmptyText      = errors.New("warble text is empty")
	ErrForbidden      = errors.New("operation not permitted")
	ErrSelfLike       = errors.New("cannot like your own warble")
)

// UserService handles accounts and authentication.
type UserService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	GetProfile(ctx context.Context, id uint) (*domain.ProfileResponse, error)
	ListUsers(ctx context.Context, q string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID uint, req *domain.UpdateProfileRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, userID uint) error
}

// GraphService handles the follow graph.
type GraphService interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]domain.User, error)
	Following(ctx context.Context, userID uint) ([]domain.User, error)
}

// WarbleService handles warbles and likes.
type WarbleService interface {
	Post(ctx context.Context, authorID uint, text string) (*domain.Warble, error)
	Get(ctx context.Context, id uint) (*domain.Warble, error)
	Delete(ctx context.Context, actorID, warbleID uint) error
	ByAuthor(ctx context.Context, authorID uint) ([]domain.Warble, error)
	Like(ctx context.Context, userID, warbleID uint) error
	Unlike(ctx context.Context, userID, warbleID uint) error
	LikedBy(ctx context.Context, userID uint) ([]domain.Warble, error)
}

// FeedService assembles home feeds.
type FeedService interface {
	// HomeFeed returns the most recent warbles authored by userID or anyone
	// they follow, newest first.
	HomeFeed(ctx context.Context, userID uint) ([]domain.Warble, error)
}
