package middleware

import (
	"log"
	"strings"

	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-gonic/gin"
)

// Accepted query parameter names for the feed key, first non-empty wins.
// Both case variants are kept for compatibility with existing feed URLs.
const (
	FeedKeyParam      = "FEED_KEY"
	FeedKeyParamLower = "feed_key"
)

// FeedKeyAuth authenticates feed requests that carry a feed key token.
// It must be registered before any interactive authentication middleware:
// on a match it resolves the acting identity, so later steps skip their own
// credential checks.
//
// Every non-match outcome is a strict no-op. An absent, unknown, stale or
// misplaced token leaves the request byte-identical to one without the
// parameter; it never blocks, alters, or differentiates the response.
func FeedKeyAuth(keys *services.KeyService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := feedKeyFromQuery(c)
		if token == "" || IdentityResolved(c) {
			c.Next()
			return
		}

		// Only feed endpoints are eligible. Anything else would turn the
		// key into a general-purpose login bypass.
		if !IsFeedRequest(c.Request.URL.Path) {
			c.Next()
			return
		}

		site := SiteFromContext(c)
		if site == nil {
			c.Next()
			return
		}

		key, ok := keys.Authenticate(c.Request.Context(), site.ID, token)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUserByID(key.UserID)
		if err != nil {
			// Key row points at a missing account; treat as unknown token.
			log.Printf("feed key user %d not found for site %d: %v", key.UserID, site.ID, err)
			c.Next()
			return
		}

		SetIdentity(c, user, AuthMethodFeedKey)
		c.Next()
	}
}

func feedKeyFromQuery(c *gin.Context) string {
	if v := c.Query(FeedKeyParam); v != "" {
		return v
	}
	return c.Query(FeedKeyParamLower)
}

// IsFeedRequest reports whether the path targets a feed endpoint.
func IsFeedRequest(path string) bool {
	return path == "/feed" || strings.HasPrefix(path, "/feed/")
}
