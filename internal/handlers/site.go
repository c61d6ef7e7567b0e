package handlers

import (
	"log"
	"net/http"

	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/feed"
	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-gonic/gin"
)

type SiteHandler struct {
	siteService *services.SiteService
	rewriter    *feed.LinkRewriter
	config      *config.Config
}

func NewSiteHandler(ss *services.SiteService, rw *feed.LinkRewriter, cfg *config.Config) *SiteHandler {
	return &SiteHandler{
		siteService: ss,
		rewriter:    rw,
		config:      cfg,
	}
}

// Home renders the site front page with its recent posts and the feed
// subscription links. The links pass through the rewriter, which is where
// first-time key issuance happens for authenticated viewers of restricted
// sites.
func (h *SiteHandler) Home(c *gin.Context) {
	site := middleware.SiteFromContext(c)
	if site == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	posts, err := h.siteService.ListPosts(c.Request.Context(), site.ID, h.config.FeedItemLimit)
	if err != nil {
		log.Printf("failed to load posts for site %d: %v", site.ID, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Failed to load posts",
		})
		return
	}

	viewer := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	rssURL, err := h.rewriter.Rewrite(ctx, site.URL()+"/feed", viewer, site)
	if err != nil {
		log.Printf("failed to rewrite feed link for site %d: %v", site.ID, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Failed to render feed links",
		})
		return
	}
	atomURL, err := h.rewriter.Rewrite(ctx, site.URL()+"/feed/atom", viewer, site)
	if err != nil {
		log.Printf("failed to rewrite feed link for site %d: %v", site.ID, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Failed to render feed links",
		})
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"site":    site,
		"posts":   posts,
		"viewer":  viewer,
		"rssURL":  rssURL,
		"atomURL": atomURL,
	})
}
