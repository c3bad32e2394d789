package service

import (
	"context"
	"errors"
	"time"

	"github.com/mgregerson/chirper-mg/internal/audit"
	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/events"
	"github.com/mgregerson/chirper-mg/internal/metrics"
	"github.com/mgregerson/chirper-mg/internal/publisher"
	"github.com/mgregerson/chirper-mg/internal/repository"
	"github.com/mgregerson/chirper-mg/internal/store"
	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
)

type graphService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	feeds   store.FeedCache
	pub     *publisher.Publisher
}

var _ GraphService = (*graphService)(nil)

// NewGraphService creates a GraphService.
func NewGraphService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	feeds store.FeedCache,
	pub *publisher.Publisher,
) GraphService {
	return &graphService{
		users:   users,
		follows: follows,
		feeds:   feeds,
		pub:     pub,
	}
}

// Follow creates the follower -> followed edge. Following a user twice is a
// no-op rather than an error, so retried requests stay safe.
func (s *graphService) Follow(ctx context.Context, followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	if _, err := s.users.GetByID(ctx, followedID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.follows.Create(ctx, followerID, followedID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFollowing) {
			return nil
		}
		return err
	}

	s.invalidateFeed(ctx, followerID)
	metrics.GraphChanges.WithLabelValues(metrics.ActionFollow).Inc()
	audit.LogTarget(ctx, audit.ActionFollow, followerID, followedID, "user followed")
	s.pub.Publish(ctx, events.SubjectFollowed, events.FollowEvent{
		FollowerID: followerID,
		FollowedID: followedID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Unfollow removes the follower -> followed edge. Removing an edge that does
// not exist is a no-op.
func (s *graphService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if _, err := s.users.GetByID(ctx, followedID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.follows.Delete(ctx, followerID, followedID); err != nil {
		if errors.Is(err, repository.ErrFollowNotFound) {
			return nil
		}
		return err
	}

	s.invalidateFeed(ctx, followerID)
	metrics.GraphChanges.WithLabelValues(metrics.ActionUnfollow).Inc()
	audit.LogTarget(ctx, audit.ActionUnfollow, followerID, followedID, "user unfollowed")
	s.pub.Publish(ctx, events.SubjectUnfollowed, events.FollowEvent{
		FollowerID: followerID,
		FollowedID: followedID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *graphService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.follows.Exists(ctx, followerID, followedID)
}

// IsFollowedBy reports whether otherID follows userID. It is the logical
// inverse of IsFollowing with the arguments swapped.
func (s *graphService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.follows.Exists(ctx, otherID, userID)
}

func (s *graphService) Followers(ctx context.Context, userID uint) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

func (s *graphService) Following(ctx context.Context, userID uint) ([]domain.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

func (s *graphService) invalidateFeed(ctx context.Context, userID uint) {
	if err := s.feeds.Invalidate(ctx, userID); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to invalidate feed cache")
	}
}
