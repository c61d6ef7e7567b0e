package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService *services.UserService
	metrics     metrics.Recorder
}

func NewAuthHandler(us *services.UserService, m metrics.Recorder) *AuthHandler {
	return &AuthHandler{
		userService: us,
		metrics:     m,
	}
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"redirect": c.Query("redirect"),
	})
}

// Login verifies credentials and establishes the login session
func (h *AuthHandler) Login(c *gin.Context) {
	login := c.PostForm("login")
	password := c.PostForm("password")
	redirect := c.PostForm("redirect")

	user, err := h.userService.Authenticate(login, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"error":    "Invalid login or password",
				"redirect": redirect,
			})
			return
		}
		log.Printf("login failed for %q: %v", login, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Login is temporarily unavailable",
		})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserID, user.ID)
	if err := session.Save(); err != nil {
		log.Printf("failed to save session for %q: %v", login, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Login is temporarily unavailable",
		})
		return
	}

	c.Redirect(http.StatusFound, safeRedirect(redirect))
}

// Logout clears the login session
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	h.metrics.RecordLogout()
	c.Redirect(http.StatusFound, "/login")
}

// safeRedirect keeps post-login redirects on-site.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
