package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	keyService  *services.KeyService
	userService *services.UserService
}

func NewProfileHandler(ks *services.KeyService, us *services.UserService) *ProfileHandler {
	return &ProfileHandler{
		keyService:  ks,
		userService: us,
	}
}

// Show lists the subject's used feed keys with revoke controls.
func (h *ProfileHandler) Show(c *gin.Context) {
	actor, subject, ok := h.resolveSubject(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, actor, subject, "", "")
}

// Revoke deletes the selected keys and renders the outcome banner on the
// same response, no cross-request flash state.
func (h *ProfileHandler) Revoke(c *gin.Context) {
	actor, subject, ok := h.resolveSubject(c)
	if !ok {
		return
	}

	siteIDs := make([]int64, 0)
	for _, raw := range c.PostFormArray("site_ids") {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"error": "Invalid site selection",
			})
			return
		}
		siteIDs = append(siteIDs, id)
	}
	if len(siteIDs) == 0 {
		h.render(c, http.StatusOK, actor, subject, "", "No feed keys selected")
		return
	}

	result, err := h.keyService.Revoke(c.Request.Context(), actor, subject, siteIDs)
	if err != nil {
		if errors.Is(err, services.ErrNotAllowed) {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"error": "You may not manage this account's feed keys",
			})
			return
		}
		log.Printf("failed to revoke feed keys for user %d: %v", subject, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Failed to revoke feed keys",
		})
		return
	}

	if result.Failed() {
		h.render(c, http.StatusOK, actor, subject, "",
			"No feed keys were deleted; they may have been revoked already")
		return
	}
	h.render(c, http.StatusOK, actor, subject,
		fmt.Sprintf("Deleted %d feed key(s)", result.Deleted), "")
}

// resolveSubject determines whose keys the page manages: the acting user
// themselves, or another account via ?user= for admins.
func (h *ProfileHandler) resolveSubject(c *gin.Context) (actor *models.User, subjectID int64, ok bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		// RequireAuth runs before these handlers; reaching here anonymous
		// is a routing mistake.
		c.AbortWithStatus(http.StatusForbidden)
		return nil, 0, false
	}

	subjectID = user.ID
	if raw := c.Query("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.HTML(http.StatusBadRequest, "error.html", gin.H{
				"error": "Invalid user id",
			})
			return nil, 0, false
		}
		subjectID = id
	}

	if !user.CanEdit(subjectID) {
		c.HTML(http.StatusForbidden, "error.html", gin.H{
			"error": "You may not manage this account's feed keys",
		})
		return nil, 0, false
	}

	return user, subjectID, true
}

func (h *ProfileHandler) render(
	c *gin.Context,
	status int,
	actor *models.User,
	subjectID int64,
	banner, bannerError string,
) {
	keys, err := h.keyService.ListKeys(c.Request.Context(), subjectID)
	if err != nil {
		log.Printf("failed to list feed keys for user %d: %v", subjectID, err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"error": "Failed to load feed keys",
		})
		return
	}

	c.HTML(status, "profile.html", gin.H{
		"viewer":      actor,
		"subjectID":   subjectID,
		"keys":        keys,
		"banner":      banner,
		"bannerError": bannerError,
	})
}
