package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry")
}

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Create inserts a directed follow edge. A duplicate pair trips the composite
// unique index and is reported as ErrAlreadyFollowing.
func (r *GormFollowRepository) Create(ctx context.Context, followerID, followedID uint) error {
	model := domain.FollowModel{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyFollowing
		}
		return err
	}
	return nil
}

// Delete removes a follow edge. An absent edge is ErrFollowNotFound; the
// caller decides whether that matters.
func (r *GormFollowRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&domain.FollowModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFollowNotFound
	}
	return nil
}

// Exists checks if followerID follows followedID.
func (r *GormFollowRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Followers returns the users following userID.
func (r *GormFollowRepository) Followers(ctx context.Context, userID uint) ([]domain.User, error) {
	return r.joinUsers(ctx, "users.id = follows.follower_id", "follows.followed_id = ?", userID)
}

// Following returns the users userID follows.
func (r *GormFollowRepository) Following(ctx context.Context, userID uint) ([]domain.User, error) {
	return r.joinUsers(ctx, "users.id = follows.followed_id", "follows.follower_id = ?", userID)
}

// FollowingIDs returns just the ids of the users userID follows.
func (r *GormFollowRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountFollowers returns the number of users following userID.
func (r *GormFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("followed_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountFollowing returns the number of users userID follows.
func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *GormFollowRepository) joinUsers(ctx context.Context, joinOn, where string, userID uint) ([]domain.User, error) {
	var models []domain.UserModel
	err := r.db.WithContext(ctx).
		Table("users").
		Joins("INNER JOIN follows ON "+joinOn).
		Where(where, userID).
		Order("users.username").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].ToDomain())
	}
	return users, nil
}

// Ensure interface is satisfied at compile time.
var _ FollowRepository = (*GormFollowRepository)(nil)
