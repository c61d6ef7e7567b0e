package bootstrap

import (
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware.
// The pre-auth ordering is a contract, not a load-order accident: the feed
// key authenticator runs after site resolution and before session identity
// and privacy enforcement.
func setupRouter(app *Application) (*gin.Engine, error) {
	cfg := app.Config
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(app.MetricsRecorder))
	r.Use(gin.Logger(), gin.Recovery())

	setupSessionMiddleware(r, app)

	tmpl, err := template.ParseFS(app.TemplatesFS, "internal/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// Host-independent endpoints, registered before site resolution
	r.GET("/health", createHealthCheckHandler(app.DB))
	setupMetricsEndpoint(r, app)

	// Request identity chain, in contract order
	r.Use(middleware.ResolveSite(app.SiteService))
	r.Use(middleware.FeedKeyAuth(app.KeyService, app.UserService))
	r.Use(middleware.SessionIdentity(app.UserService))

	setupAllRoutes(r, app)

	log.Printf("Server listening on %s", cfg.ServerAddr)
	return r, nil
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, app *Application) {
	cfg := app.Config
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("pfk_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, app *Application) {
	if !app.Config.MetricsEnabled {
		log.Printf("Prometheus metrics disabled")
		return
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	log.Printf("Prometheus metrics enabled at /metrics")
}

// createHealthCheckHandler returns the health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// setupAllRoutes registers the platform and site content routes
func setupAllRoutes(r *gin.Engine, app *Application) {
	h := app.HandlerSet

	// Login routes
	r.GET("/login", h.auth.LoginPage)
	r.POST("/login", h.auth.Login)
	r.GET("/logout", h.auth.Logout)

	// Profile routes (require login)
	profile := r.Group("/profile")
	profile.Use(middleware.RequireAuth())
	{
		profile.GET("", h.profile.Show)
		profile.POST("/revoke", h.profile.Revoke)
	}

	// Site content routes: privacy enforcement applies here, after the
	// identity chain has run
	content := r.Group("")
	content.Use(middleware.EnforcePrivacy(app.Eligibility))
	{
		content.GET("/", h.site.Home)
		content.GET("/feed", h.feed.Serve)
		content.GET("/feed/:format", h.feed.Serve)
	}
}
