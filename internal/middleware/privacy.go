package middleware

import (
	"net/http"

	"github.com/adamfranco/private-feed-keys/internal/privacy"

	"github.com/gin-gonic/gin"
)

// EnforcePrivacy blocks unauthenticated access to restricted sites. It runs
// after both the feed key authenticator and session identity resolution, so
// a request carrying a valid feed key passes as its resolved user. Anonymous
// feed requests get a bare 401 (feed readers cannot follow a login page);
// anonymous page requests are redirected to login.
func EnforcePrivacy(eligibility privacy.Eligibility) gin.HandlerFunc {
	return func(c *gin.Context) {
		site := SiteFromContext(c)
		if site == nil || !eligibility.TokenEligible(site) {
			c.Next()
			return
		}

		if IdentityResolved(c) {
			c.Next()
			return
		}

		if IsFeedRequest(c.Request.URL.Path) {
			c.Header("WWW-Authenticate", `Basic realm="restricted feed"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Redirect(http.StatusFound, "/login?redirect="+c.Request.URL.String())
		c.Abort()
	}
}
