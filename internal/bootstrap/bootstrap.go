package bootstrap

import (
	"embed"
	"net/http"

	"github.com/adamfranco/private-feed-keys/internal/cache"
	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/feed"
	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/privacy"
	"github.com/adamfranco/private-feed-keys/internal/services"
	"github.com/adamfranco/private-feed-keys/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	MetricsRecorder metrics.Recorder
	SiteCache       cache.Cache[models.Site]
	Eligibility     privacy.Eligibility

	// Services
	KeyService  *services.KeyService
	SiteService *services.SiteService
	UserService *services.UserService
	Rewriter    *feed.LinkRewriter

	// HTTP
	HandlerSet  handlerSet
	Router      *gin.Engine
	Server      *http.Server
	TemplatesFS embed.FS
}

// Run initializes and starts the application
func Run(cfg *config.Config, templatesFS embed.FS) error {
	app := &Application{
		Config:      cfg,
		TemplatesFS: templatesFS,
	}

	// Phase 1: Initialize infrastructure
	if err := app.initializeInfrastructure(); err != nil {
		return err
	}

	// Phase 2: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 3: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		return err
	}

	// Phase 4: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, and the site cache
func (app *Application) initializeInfrastructure() error {
	var err error

	app.DB, err = store.New(app.Config.DatabaseDriver, app.Config.DatabaseDSN, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = metrics.Init(app.Config.MetricsEnabled)

	app.SiteCache, err = initializeSiteCache(app.Config)
	if err != nil {
		return err
	}

	app.Eligibility = privacy.NewThresholdEligibility()

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	app.KeyService = services.NewKeyService(app.DB, app.MetricsRecorder)
	app.SiteService = services.NewSiteService(app.DB, app.SiteCache, app.Config.SiteCacheTTL)
	app.UserService = services.NewUserService(app.DB, app.MetricsRecorder)
	app.Rewriter = feed.NewLinkRewriter(app.KeyService, app.Eligibility)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = newHandlerSet(app)

	router, err := setupRouter(app)
	if err != nil {
		return err
	}
	app.Router = router
	app.Server = createHTTPServer(app.Config, app.Router)

	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addSiteCacheShutdownJob(m, app.SiteCache)

	// Wait for graceful shutdown
	<-m.Done()
}
