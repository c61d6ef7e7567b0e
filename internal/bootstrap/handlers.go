package bootstrap

import (
	"github.com/adamfranco/private-feed-keys/internal/handlers"
)

// handlerSet bundles all HTTP handlers
type handlerSet struct {
	auth    *handlers.AuthHandler
	feed    *handlers.FeedHandler
	site    *handlers.SiteHandler
	profile *handlers.ProfileHandler
}

func newHandlerSet(app *Application) handlerSet {
	return handlerSet{
		auth:    handlers.NewAuthHandler(app.UserService, app.MetricsRecorder),
		feed:    handlers.NewFeedHandler(app.SiteService, app.Rewriter, app.Config, app.MetricsRecorder),
		site:    handlers.NewSiteHandler(app.SiteService, app.Rewriter, app.Config),
		profile: handlers.NewProfileHandler(app.KeyService, app.UserService),
	}
}
