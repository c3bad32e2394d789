package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mgregerson/chirper-mg/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.UserModel{},
		&domain.WarbleModel{},
		&domain.FollowModel{},
		&domain.LikeModel{},
	))
	return db
}

func createTestUser(t *testing.T, repo *GormUserRepository, username string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		ImageURL:     domain.DefaultImageURL,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}
