package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

// warbleRow is the scan target for list queries that join in the author name.
type warbleRow struct {
	ID         uint
	AuthorID   uint
	AuthorName string
	Text       string
	Timestamp  time.Time
}

func (w warbleRow) toDomain() domain.Warble {
	return domain.Warble{
		ID:         w.ID,
		AuthorID:   w.AuthorID,
		AuthorName: w.AuthorName,
		Text:       w.Text,
		Timestamp:  w.Timestamp,
	}
}

const warbleSelect = "warbles.id AS id, warbles.author_id AS author_id, " +
	"users.username AS author_name, warbles.text AS text, warbles.timestamp AS timestamp"

// GormWarbleRepository implements WarbleRepository using GORM.
type GormWarbleRepository struct {
	db *gorm.DB
}

// NewGormWarbleRepository creates a new GORM-backed warble repository.
func NewGormWarbleRepository(db *gorm.DB) *GormWarbleRepository {
	return &GormWarbleRepository{db: db}
}

// Create inserts a new warble. The timestamp is assigned here, never taken
// from the caller.
func (r *GormWarbleRepository) Create(ctx context.Context, warble *domain.Warble) error {
	model := domain.WarbleModel{
		AuthorID:  warble.AuthorID,
		Text:      warble.Text,
		Timestamp: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	warble.ID = model.ID
	warble.Timestamp = model.Timestamp
	return nil
}

// GetByID retrieves a warble by ID, author name included.
func (r *GormWarbleRepository) GetByID(ctx context.Context, id uint) (*domain.Warble, error) {
	var row warbleRow
	result := r.db.WithContext(ctx).
		Table("warbles").
		Select(warbleSelect).
		Joins("INNER JOIN users ON users.id = warbles.author_id").
		Where("warbles.id = ?", id).
		Take(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrWarbleNotFound
		}
		return nil, result.Error
	}

	warble := row.toDomain()
	return &warble, nil
}

// Delete removes a warble and any likes pointing at it.
func (r *GormWarbleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("warble_id = ?", id).Delete(&domain.LikeModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.WarbleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrWarbleNotFound
		}
		return nil
	})
}

// ByAuthor returns a user's warbles, most recent first.
func (r *GormWarbleRepository) ByAuthor(ctx context.Context, authorID uint) ([]domain.Warble, error) {
	return r.listWarbles(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("warbles.author_id = ?", authorID)
	}, 0)
}

// ByAuthors returns the most recent warbles authored by any of authorIDs,
// ordered timestamp descending with id descending as the tie-break.
func (r *GormWarbleRepository) ByAuthors(ctx context.Context, authorIDs []uint, limit int) ([]domain.Warble, error) {
	if len(authorIDs) == 0 {
		return []domain.Warble{}, nil
	}
	return r.listWarbles(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("warbles.author_id IN ?", authorIDs)
	}, limit)
}

// ByIDs returns the given warbles, same ordering as the feed.
func (r *GormWarbleRepository) ByIDs(ctx context.Context, ids []uint) ([]domain.Warble, error) {
	if len(ids) == 0 {
		return []domain.Warble{}, nil
	}
	return r.listWarbles(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("warbles.id IN ?", ids)
	}, 0)
}

// CreateLike records a like. Liking twice trips the composite unique index
// and is reported as ErrAlreadyLiked.
func (r *GormWarbleRepository) CreateLike(ctx context.Context, userID, warbleID uint) error {
	model := domain.LikeModel{UserID: userID, WarbleID: warbleID}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyLiked
		}
		return err
	}
	return nil
}

// DeleteLike removes a like; an absent like is ErrLikeNotFound.
func (r *GormWarbleRepository) DeleteLike(ctx context.Context, userID, warbleID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND warble_id = ?", userID, warbleID).
		Delete(&domain.LikeModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

// LikedBy returns the warbles a user has liked, most recent first.
func (r *GormWarbleRepository) LikedBy(ctx context.Context, userID uint) ([]domain.Warble, error) {
	return r.listWarbles(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Joins("INNER JOIN likes ON likes.warble_id = warbles.id").
			Where("likes.user_id = ?", userID)
	}, 0)
}

func (r *GormWarbleRepository) listWarbles(ctx context.Context, filter func(*gorm.DB) *gorm.DB, limit int) ([]domain.Warble, error) {
	query := r.db.WithContext(ctx).
		Table("warbles").
		Select(warbleSelect).
		Joins("INNER JOIN users ON users.id = warbles.author_id").
		Order("warbles.timestamp DESC, warbles.id DESC")
	query = filter(query)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []warbleRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	warbles := make([]domain.Warble, 0, len(rows))
	for _, row := range rows {
		warbles = append(warbles, row.toDomain())
	}
	return warbles, nil
}

// Ensure interface is satisfied at compile time.
var _ WarbleRepository = (*GormWarbleRepository)(nil)
