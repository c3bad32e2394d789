package service

import (
	"context"

	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/metrics"
	"github.com/mgregerson/chirper-mg/internal/repository"
	"github.com/mgregerson/chirper-mg/internal/store"
	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
)

// feedLimit caps the home feed at the most recent entries.
const feedLimit = 100

type feedService struct {
	warbles repository.WarbleRepository
	follows repository.FollowRepository
	feeds   store.FeedCache
}

var _ FeedService = (*feedService)(nil)

// NewFeedService creates a FeedService.
func NewFeedService(
	warbles repository.WarbleRepository,
	follows repository.FollowRepository,
	feeds store.FeedCache,
) FeedService {
	return &feedService{
		warbles: warbles,
		follows: follows,
		feeds:   feeds,
	}
}

// HomeFeed returns warbles authored by userID or anyone they follow, newest
// first, capped at feedLimit. The cache holds candidate warble ids only; the
// database resolves content and order on every read.
func (s *feedService) HomeFeed(ctx context.Context, userID uint) ([]domain.Warble, error) {
	ids, hit, err := s.feeds.Get(ctx, userID)
	if err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to read feed cache")
	}
	if hit {
		metrics.FeedRequests.WithLabelValues(metrics.CacheHit).Inc()
		if len(ids) == 0 {
			return []domain.Warble{}, nil
		}
		return s.warbles.ByIDs(ctx, ids)
	}
	metrics.FeedRequests.WithLabelValues(metrics.CacheMiss).Inc()

	followingIDs, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followingIDs, userID)

	warbles, err := s.warbles.ByAuthors(ctx, authorIDs, feedLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]store.FeedEntry, 0, len(warbles))
	for i := range warbles {
		entries = append(entries, store.FeedEntry{
			WarbleID:  warbles[i].ID,
			Timestamp: warbles[i].Timestamp,
		})
	}
	if err := s.feeds.Set(ctx, userID, entries); err != nil {
		logger := pkglog.Ctx(ctx)
		logger.Error().Err(err).Uint(pkglog.FieldUserID, userID).Msg("failed to write feed cache")
	}

	return warbles, nil
}
