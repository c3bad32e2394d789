package service

import (
	"context"
	"errors"
	"strings"
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

type warbleService struct {
	warbles repository.WarbleRepository
	follows repository.FollowRepository
	feeds   store.FeedCache
	pub     *publisher.Publisher
}

var _ WarbleService = (*warbleService)(nil)

// NewWarbleService creates a WarbleService.
func NewWarbleService(
	warbles repository.WarbleRepository,
	follows repository.FollowRepository,
	feeds store.FeedCache,
	pub *publisher.Publisher,
) WarbleService {
	return &warbleService{
		warbles: warbles,
		follows: follows,
		feeds:   feeds,
		pub:     pub,
	}
}

func (s *warbleService) Post(ctx context.Context, authorID uint, text string) (*domain.Warble, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	warble := &domain.Warble{
		AuthorID: authorID,
		Text:     text,
	}
	if err := s.warbles.Create(ctx, warble); err != nil {
		return nil, err
	}

	s.invalidateTimelines(ctx, authorID)
	metrics.WarblesPosted.Inc()
	audit.LogTarget(ctx, audit.ActionPostWarble, authorID, warble.ID, "warble posted")
	s.pub.Publish(ctx, events.SubjectWarblePosted, events.WarbleEvent{
		WarbleID:   warble.ID,
		AuthorID:   authorID,
		ActorID:    authorID,
		OccurredAt: time.Now().UTC(),
	})
	return warble, nil
}

func (s *warbleService) Get(ctx context.Context, id uint) (*domain.Warble, error) {
	warble, err := s.warbles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrWarbleNotFound) {
			return nil, ErrWarbleNotFound
		}
		return nil, err
	}
	return warble, nil
}

// Delete removes a warble. Only the author may delete it.
func (s *warbleService) Delete(ctx context.Context, actorID, warbleID uint) error {
	warble, err := s.Get(ctx, warbleID)
	if err != nil {
		return err
	}
	if warble.AuthorID != actorID {
		return ErrForbidden
	}

	if err := s.warbles.Delete(ctx, warbleID); err != nil {
		if errors.Is(err, repository.ErrWarbleNotFound) {
			return ErrWarbleNotFound
		}
		return err
	}

	s.invalidateTimelines(ctx, actorID)
	audit.LogTarget(ctx, audit.ActionDeleteWarble, actorID, warbleID, "warble deleted")
	s.pub.Publish(ctx, events.SubjectWarbleDeleted, events.WarbleEvent{
		WarbleID:   warbleID,
		AuthorID:   warble.AuthorID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *warbleService) ByAuthor(ctx context.Context, authorID uint) ([]domain.Warble, error) {
	return s.warbles.ByAuthor(ctx, authorID)
}

// Like marks a warble as liked. Liking one's own warble is rejected; liking
// the same warble twice is a no-op.
func (s *warbleService) Like(ctx context.Context, userID, warbleID uint) error {
	warble, err := s.Get(ctx, warbleID)
	if err != nil {
		return err
	}
	if warble.AuthorID == userID {
		return ErrSelfLike
	}

	if err := s.warbles.CreateLike(ctx, userID, warbleID); err != nil {
		if errors.Is(err, repository.ErrAlreadyLiked) {
			return nil
		}
		return err
	}

	audit.LogTarget(ctx, audit.ActionLikeWarble, userID, warbleID, "warble liked")
	s.pub.Publish(ctx, events.SubjectWarbleLiked, events.WarbleEvent{
		WarbleID:   warbleID,
		AuthorID:   warble.AuthorID,
		ActorID:    userID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Unlike removes a like. Removing a like that does not exist is a no-op.
func (s *warbleService) Unlike(ctx context.Context, userID, warbleID uint) error {
	if _, err := s.Get(ctx, warbleID); err != nil {
		return err
	}

	if err := s.warbles.DeleteLike(ctx, userID, warbleID); err != nil {
		if errors.Is(err, repository.ErrLikeNotFound) {
			return nil
		}
		return err
	}

	audit.LogTarget(ctx, audit.ActionUnlikeWarble, userID, warbleID, "warble unliked")
	return nil
}

func (s *warbleService) LikedBy(ctx context.Context, userID uint) ([]domain.Warble, error) {
	return s.warbles.LikedBy(ctx, userID)
}

// invalidateTimelines drops the cached feeds that include authorID's
// warbles: the author's own and those of their followers.
func (s *warbleService) invalidateTimelines(ctx context.Context, authorID uint) {
	ids := []uint{authorID}
	followers, err := s.follows.Followers(ctx, authorID)
	if err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, authorID).Msg("failed to load followers for cache invalidation")
	} else {
		for i := range followers {
			ids = append(ids, followers[i].ID)
		}
	}
	if err := s.feeds.Invalidate(ctx, ids...); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, authorID).Msg("failed to invalidate feed cache")
	}
}
