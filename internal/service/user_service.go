package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mgregerson/chirper-mg/internal/audit"
	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/events"
	"github.com/mgregerson/chirper-mg/internal/metrics"
	"github.com/mgregerson/chirper-mg/internal/publisher"
	"github.com/mgregerson/chirper-mg/internal/repository"
	"github.com/mgregerson/chirper-mg/internal/session"
	"github.com/mgregerson/chirper-mg/internal/store"
	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
)

// dummyHash is a bcrypt hash of a random string. Comparing against it when
// the username does not exist keeps failed logins timing-uniform, so
// usernames cannot be enumerated through response latency.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type userService struct {
	users    repository.UserRepository
	follows  repository.FollowRepository
	sessions session.Store
	feeds    store.FeedCache
	pub      *publisher.Publisher
}

var _ UserService = (*userService)(nil)

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	sessions session.Store,
	feeds store.FeedCache,
	pub *publisher.Publisher,
) UserService {
	return &userService{
		users:    users,
		follows:  follows,
		sessions: sessions,
		feeds:    feeds,
		pub:      pub,
	}
}

func (s *userService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = domain.DefaultImageURL
	}

	user := &domain.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   string(hash),
		ImageURL:       imageURL,
		HeaderImageURL: domain.DefaultHeaderImageURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameExists
		default:
			return nil, err
		}
	}

	metrics.Signups.Inc()
	audit.Log(ctx, audit.ActionRegister, user.ID, "user registered")
	s.pub.Publish(ctx, events.SubjectUserRegistered, events.UserEvent{
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})

	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.Logins.WithLabelValues(metrics.ResultFailure).Inc()
		audit.LogWithDetail(ctx, audit.ActionLoginFailed, user.ID, username, "login failed")
		return nil, ErrInvalidCredentials
	}

	metrics.Logins.WithLabelValues(metrics.ResultSuccess).Inc()
	audit.Log(ctx, audit.ActionLogin, user.ID, "user logged in")
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*domain.ProfileResponse, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	followers, err := s.follows.CountFollowers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.ProfileResponse{
		User:      user.ToResponse(),
		Followers: followers,
		Following: following,
	}, nil
}

func (s *userService) ListUsers(ctx context.Context, q string) ([]domain.User, error) {
	return s.users.List(ctx, q)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req *domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	user.Username = req.Username
	user.Email = req.Email
	user.Bio = req.Bio
	user.ImageURL = req.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = domain.DefaultImageURL
	}
	user.HeaderImageURL = req.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = domain.DefaultHeaderImageURL
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, err
		}
	}

	audit.Log(ctx, audit.ActionUpdateProfile, userID, "profile updated")
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	// Deleting the account invalidates every live session for it. Feed caches
	// of followers go stale for at most one TTL; dropping the user's own feed
	// is enough here.
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to revoke sessions")
	}
	if err := s.feeds.Invalidate(ctx, userID); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to invalidate feed cache")
	}

	audit.Log(ctx, audit.ActionDeleteAccount, userID, "account deleted")
	s.pub.Publish(ctx, events.SubjectUserDeleted, events.UserEvent{
		UserID:     userID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
