package middleware

import (
	"github.com/adamfranco/private-feed-keys/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys and session keys shared across the middleware chain.
const (
	ContextSite       = "site"
	ContextUser       = "user"
	ContextAuthMethod = "auth_method"

	AuthMethodFeedKey = "feed_key"
	AuthMethodSession = "session"

	SessionUserID = "user_id"
)

// SetIdentity records the acting user for the remainder of the request.
// Subsequently-registered interactive authentication steps observe a
// resolved identity and skip their own resolution.
func SetIdentity(c *gin.Context, user *models.User, method string) {
	c.Set(ContextUser, user)
	c.Set(ContextAuthMethod, method)
}

// CurrentUser returns the acting user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(ContextUser); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// IdentityResolved reports whether an acting user has been established.
func IdentityResolved(c *gin.Context) bool {
	return CurrentUser(c) != nil
}

// AuthMethod returns how the acting identity was established, or "" if the
// request is anonymous.
func AuthMethod(c *gin.Context) string {
	if v, exists := c.Get(ContextAuthMethod); exists {
		if method, ok := v.(string); ok {
			return method
		}
	}
	return ""
}

// SiteFromContext returns the site resolved for this request, or nil.
func SiteFromContext(c *gin.Context) *models.Site {
	if v, exists := c.Get(ContextSite); exists {
		if site, ok := v.(*models.Site); ok {
			return site
		}
	}
	return nil
}
