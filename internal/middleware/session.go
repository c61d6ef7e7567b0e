package middleware

import (
	"net/http"

	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionIdentity populates the acting user from the login session. It is a
// no-op when an earlier step (the feed key authenticator) already resolved
// an identity for this request.
func SessionIdentity(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityResolved(c) {
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID, ok := session.Get(SessionUserID).(int64)
		if !ok {
			c.Next()
			return
		}

		user, err := users.GetUserByID(userID)
		if err != nil {
			// Stale session referencing a removed account; stay anonymous.
			c.Next()
			return
		}

		SetIdentity(c, user, AuthMethodSession)
		c.Next()
	}
}

// RequireAuth is a middleware that requires the user to be logged in
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityResolved(c) {
			// Redirect to login with return URL
			redirectURL := c.Request.URL.String()
			c.Redirect(http.StatusFound, "/login?redirect="+redirectURL)
			c.Abort()
			return
		}
		c.Next()
	}
}
