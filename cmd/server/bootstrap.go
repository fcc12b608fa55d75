package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/api"
	"github.com/charlesng35/notesd/internal/app"
	"github.com/charlesng35/notesd/internal/app/maintenance"
	iauth "github.com/charlesng35/notesd/internal/auth"
	"github.com/charlesng35/notesd/internal/cache"
	"github.com/charlesng35/notesd/internal/database"
	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/monitoring"
	"github.com/charlesng35/notesd/internal/monitoring/checks"
	"github.com/charlesng35/notesd/internal/services"
	"github.com/charlesng35/notesd/internal/storage"
	"github.com/charlesng35/notesd/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisStore
	Lifecycle *iauth.Lifecycle
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine

	memoryRates *middleware.MemoryRateStore
}

// bootstrapRuntime initialises databases, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	sessionCfg := cfg.Auth.SessionServiceConfig()
	if cfg.Cache.Sessions {
		sessionCfg.Cache = iauth.NewSessionCache(stack.cacheStore(dbStore))
	}

	sessionSvc, err := iauth.NewSessionService(stack.DB, sessionCfg)
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	stack.Lifecycle, err = iauth.NewLifecycle(stack.DB, jwtSvc, sessionSvc, cfg.Auth.LifecycleConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session lifecycle: %w", err)
	}

	avatars, err := initialiseAvatarStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	users, err := services.NewUserService(stack.DB, sessionSvc, services.UserServiceConfig{
		BaseURL: strings.TrimRight(cfg.Server.BaseURL, "/"),
		Avatars: avatars,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}

	notes, err := services.NewNoteService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise note service: %w", err)
	}

	labels, err := services.NewLabelService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise label service: %w", err)
	}

	cleanerOpts := []maintenance.Option{
		maintenance.WithSchedule(cfg.Maintenance.Schedule),
		maintenance.WithCachePurge(dbStore),
	}
	if cfg.Maintenance.SessionPurge {
		cleanerOpts = append(cleanerOpts, maintenance.WithSessionPurge(sessionSvc))
	}
	stack.Cleaner = maintenance.NewCleaner(cleanerOpts...)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	if cfg.RateLimit.Enabled {
		if stack.Redis != nil {
			stack.RateStore = middleware.NewCacheRateStore(stack.Redis)
		} else {
			stack.memoryRates = middleware.NewMemoryRateStore()
			stack.RateStore = stack.memoryRates
		}
	}

	health := monitoring.NewHealthManager(0)
	health.Register(checks.Database(stack.DB))
	if stack.Redis != nil {
		health.Register(checks.Redis(stack.Redis))
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:        stack.DB,
		Config:    cfg,
		Lifecycle: stack.Lifecycle,
		Cookies:   middleware.NewCookieJar(cfg.Auth.CookieConfig()),
		Users:     users,
		Notes:     notes,
		Labels:    labels,
		RateStore: stack.RateStore,
		Health:    health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func (s *runtimeStack) cacheStore(fallback *cache.DatabaseStore) cache.Store {
	if s.Redis != nil {
		return s.Redis
	}
	return fallback
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.memoryRates != nil {
		s.memoryRates.Stop()
	}

	var errs error
	if s.Redis != nil {
		errs = multierr.Append(errs, s.Redis.Close())
	}
	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}
	if errs != nil {
		log.Warn("resource shutdown", zap.Error(errs))
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func initialiseAvatarStore(ctx context.Context, cfg *app.Config) (storage.AvatarStore, error) {
	switch driver := cfg.Storage.AvatarDriver(); driver {
	case app.AvatarDriverLocal:
		store, err := storage.NewFilesystemStore(cfg.AvatarDir(), strings.TrimRight(cfg.Server.BaseURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("initialise avatar directory: %w", err)
		}
		return store, nil
	case app.AvatarDriverS3:
		store, err := storage.NewS3Store(ctx, cfg.Storage.S3Config())
		if err != nil {
			return nil, fmt.Errorf("initialise avatar bucket: %w", err)
		}
		return store, nil
	default:
		return nil, errors.New("storage.avatars.driver must be local or s3, got " + driver)
	}
}
