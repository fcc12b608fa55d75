package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/app"
	iauth "github.com/charlesng35/notesd/internal/auth"
	"github.com/charlesng35/notesd/internal/handlers"
	"github.com/charlesng35/notesd/internal/middleware"
	"github.com/charlesng35/notesd/internal/monitoring"
	"github.com/charlesng35/notesd/internal/monitoring/checks"
	"github.com/charlesng35/notesd/internal/services"
)

// Dependencies are the wired components the router mounts.
type Dependencies struct {
	DB        *gorm.DB
	Config    *app.Config
	Lifecycle *iauth.Lifecycle
	Cookies   *middleware.CookieJar
	Users     *services.UserService
	Notes     *services.NoteService
	Labels    *services.LabelService
	RateStore middleware.RateStore
	// Health is optional; nil probes the database only.
	Health *monitoring.HealthManager
}

func (d Dependencies) validate() error {
	switch {
	case d.DB == nil:
		return errors.New("database handle must be provided")
	case d.Config == nil:
		return errors.New("config must be provided")
	case d.Lifecycle == nil:
		return errors.New("session lifecycle must be provided")
	case d.Cookies == nil:
		return errors.New("cookie jar must be provided")
	case d.Users == nil, d.Notes == nil, d.Labels == nil:
		return errors.New("user, note and label services must be provided")
	case d.Config.RateLimit.Enabled && d.RateStore == nil:
		return errors.New("rate store must be provided when rate limiting is enabled")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ErrorHandler(deps.Cookies))

	health := deps.Health
	if health == nil {
		health = monitoring.NewHealthManager(0)
		health.Register(checks.Database(deps.DB))
	}

	registerHealthRoutes(r, health)
	registerMonitoringRoutes(r, cfg.Monitoring.Prometheus)
	registerStaticRoutes(r, cfg.Server.PublicDir)

	api := r.Group("/api")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(deps.RateStore, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	registerAuthRoutes(api, handlers.NewAuthHandler(deps.Users, deps.Lifecycle, deps.Cookies))

	v1 := api.Group("/v1")
	v1.Use(middleware.SessionAuth(deps.Lifecycle, deps.Cookies))

	registerUserRoutes(v1, handlers.NewUserHandler(deps.Users, deps.Cookies))
	registerSessionRoutes(v1, handlers.NewSessionHandler(deps.Lifecycle.Sessions(), deps.Cookies))
	registerNoteRoutes(v1, handlers.NewNoteHandler(deps.Notes), handlers.NewArchiveHandler(deps.Notes))
	registerLabelRoutes(v1, handlers.NewLabelHandler(deps.Labels))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
