package handlers

import (
	"log"
	"net/http"

	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/feed"
	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	siteService *services.SiteService
	rewriter    *feed.LinkRewriter
	config      *config.Config
	metrics     metrics.Recorder
}

func NewFeedHandler(
	ss *services.SiteService,
	rw *feed.LinkRewriter,
	cfg *config.Config,
	m metrics.Recorder,
) *FeedHandler {
	return &FeedHandler{
		siteService: ss,
		rewriter:    rw,
		config:      cfg,
		metrics:     m,
	}
}

// Serve renders the site feed. Privacy enforcement has already run: if the
// site is restricted, the request reached us either via the login session
// or via a valid feed key.
func (h *FeedHandler) Serve(c *gin.Context) {
	site := middleware.SiteFromContext(c)
	if site == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	format := c.Param("format")
	if format == "" {
		format = feed.FormatRSS
	}
	if format != feed.FormatRSS && format != feed.FormatAtom {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	posts, err := h.siteService.ListPosts(c.Request.Context(), site.ID, h.config.FeedItemLimit)
	if err != nil {
		log.Printf("failed to load posts for site %d: %v", site.ID, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	// The feed's self link goes through the rewriter so subscribers on
	// restricted sites keep their token when copying it.
	selfURL := site.URL() + c.Request.URL.Path
	selfURL, err = h.rewriter.Rewrite(c.Request.Context(), selfURL, middleware.CurrentUser(c), site)
	if err != nil {
		// Issuance failure is fatal to the rendering path: an unpersisted
		// token would produce a permanently unresolvable feed URL.
		log.Printf("failed to rewrite feed self link for site %d: %v", site.ID, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	body, err := feed.Render(site, posts, selfURL, format)
	if err != nil {
		log.Printf("failed to render %s feed for site %d: %v", format, site.ID, err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.metrics.RecordFeedRendered(format)
	c.Data(http.StatusOK, feed.ContentType(format), []byte(body))
}
