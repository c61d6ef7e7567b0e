package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-gonic/gin"
)

// ResolveSite maps the request Host header to a tenant site and stores it
// in the context. Requests for unknown hosts get a 404.
func ResolveSite(sites *services.SiteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		domain := hostWithoutPort(c.Request.Host)

		site, err := sites.GetByDomain(c.Request.Context(), domain)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.Set(ContextSite, site)
		c.Next()
	}
}

func hostWithoutPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}
