package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mgregerson/chirper-mg/internal/config"
	"github.com/mgregerson/chirper-mg/internal/domain"
	"github.com/mgregerson/chirper-mg/internal/handler"
	"github.com/mgregerson/chirper-mg/internal/publisher"
	"github.com/mgregerson/chirper-mg/internal/repository"
	"github.com/mgregerson/chirper-mg/internal/service"
	"github.com/mgregerson/chirper-mg/internal/session"
	"github.com/mgregerson/chirper-mg/internal/store"
	"github.com/mgregerson/chirper-mg/pkg/database"
	pkglog "github.com/mgregerson/chirper-mg/pkg/log"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger := pkglog.L()
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "warbler",
	})
	logger := pkglog.L()

	// Database
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get underlying sql.DB")
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.WarbleModel{},
		&domain.FollowModel{},
		&domain.LikeModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Sessions and feed cache: Redis when configured, in-memory otherwise.
	var (
		sessionStore session.Store
		feedCache    store.FeedCache
	)
	if cfg.Redis.Enabled {
		rs, err := session.NewRedisStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.TTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis for sessions")
		}
		fc, err := store.NewRedisFeedCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Feed.CacheTTL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis for feed cache")
		}
		sessionStore, feedCache = rs, fc
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	} else {
		sessionStore = session.NewMemoryStore()
		feedCache = store.NewMemoryFeedCache(cfg.Feed.CacheTTL)
		logger.Warn().Msg("redis disabled; sessions and feed cache are in-memory")
	}
	defer sessionStore.Close()
	defer feedCache.Close()

	// Event publisher
	pub := publisher.Disabled()
	if cfg.NATS.Enabled {
		p, err := publisher.New(cfg.NATS.URL)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to nats, events disabled")
		} else {
			pub = p
			logger.Info().Str("url", cfg.NATS.URL).Msg("nats connected")
		}
	}
	defer pub.Close()

	// Repositories and services
	userRepo := repository.NewGormUserRepository(db)
	followRepo := repository.NewGormFollowRepository(db)
	warbleRepo := repository.NewGormWarbleRepository(db)

	userSvc := service.NewUserService(userRepo, followRepo, sessionStore, feedCache, pub)
	graphSvc := service.NewGraphService(userRepo, followRepo, feedCache, pub)
	warbleSvc := service.NewWarbleService(warbleRepo, followRepo, feedCache, pub)
	feedSvc := service.NewFeedService(warbleRepo, followRepo, feedCache)

	sessionMW := session.NewMiddleware(
		sessionStore,
		userRepo,
		int(cfg.Session.TTL.Seconds()),
		cfg.Server.SecureCookies,
	)

	httpHandler := handler.NewHTTPHandler(userSvc, graphSvc, warbleSvc, feedSvc, sessionMW)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("warbler starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
	}
	logger.Info().Msg("warbler stopped")
}
