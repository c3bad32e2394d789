package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user. Uniqueness of username and email is enforced by
// the database, so a racing duplicate signup fails cleanly with no row.
func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	model := domain.UserToModel(user)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return r.handleError(result.Error)
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// GetByUsername retrieves a user by username.
func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model domain.UserModel
	result := r.db.WithContext(ctx).First(&model, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// List returns users ordered by username, filtered by substring when q is set.
func (r *GormUserRepository) List(ctx context.Context, q string) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Model(&domain.UserModel{}).Order("username")
	if q != "" {
		query = query.Where("username LIKE ?", "%"+q+"%")
	}

	var models []domain.UserModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].ToDomain())
	}
	return users, nil
}

// Update persists the editable profile fields.
func (r *GormUserRepository) Update(ctx context.Context, user *domain.User) error {
	result := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"username":         user.Username,
			"email":            user.Email,
			"image_url":        user.ImageURL,
			"header_image_url": user.HeaderImageURL,
			"bio":              user.Bio,
		})
	if result.Error != nil {
		return r.handleError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	var updated domain.UserModel
	if err := r.db.WithContext(ctx).First(&updated, "id = ?", user.ID).Error; err == nil {
		user.UpdatedAt = updated.UpdatedAt
	}
	return nil
}

// Delete removes the user and everything hanging off them in one transaction:
// likes on their warbles, their own likes, follow edges in both directions,
// their warbles, and finally the user row.
func (r *GormUserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model domain.UserModel
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		authored := tx.Model(&domain.WarbleModel{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("warble_id IN (?)", authored).Delete(&domain.LikeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.LikeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", id, id).Delete(&domain.FollowModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&domain.WarbleModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.UserModel{}, "id = ?", id).Error
	})
}

// handleError converts database-specific errors to domain errors.
func (r *GormUserRepository) handleError(err error) error {
	errStr := err.Error()

	// Unique constraint violations: postgres, sqlite, mysql spellings.
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry") {
		if strings.Contains(errStr, "email") {
			return ErrEmailExists
		}
		if strings.Contains(errStr, "username") {
			return ErrUsernameExists
		}
	}

	return err
}
