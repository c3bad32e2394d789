package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/publisher"
	"github.com/mgregerson/chirper-mg/internal/repository"
	"github.com/mgregerson/chirper-mg/internal/session"
	"github.com/mgregerson/chirper-mg/internal/store"
)

// testEnv wires the full service stack over an in-memory database, the
// in-memory session store and feed cache, and a disabled event publisher.
type testEnv struct {
	users    UserService
	graph    GraphService
	warbles  WarbleService
	feed     FeedService
	sessions session.Store
	feeds    store.FeedCache

	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	warbleRepo repository.WarbleRepository
}

func newTestEnv(t *testing.T) *testEnv {
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

	userRepo := repository.NewGormUserRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	warbleRepo := repository.NewGormWarbleRepository(db)

	sessions := session.NewMemoryStore()
	feeds := store.NewMemoryFeedCache(time.Minute)
	pub := publisher.Disabled()

	return &testEnv{
		users:      NewUserService(userRepo, followRepo, sessions, feeds, pub),
		graph:      NewGraphService(userRepo, followRepo, feeds, pub),
		warbles:    NewWarbleService(warbleRepo, followRepo, feeds, pub),
		feed:       NewFeedService(warbleRepo, followRepo, feeds),
		sessions:   sessions,
		feeds:      feeds,
		userRepo:   userRepo,
		followRepo: followRepo,
		warbleRepo: warbleRepo,
	}
}

func (e *testEnv) signup(t *testing.T, username string) *domain.User {
	t.Helper()

	user, err := e.users.Signup(context.Background(), &domain.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) post(t *testing.T, authorID uint, text string) *domain.Warble {
	t.Helper()

	w, err := e.warbles.Post(context.Background(), authorID, text)
	require.NoError(t, err)
	return w
}
