package handlers

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/services"
	"github.com/adamfranco/private-feed-keys/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileTestTemplates = `
{{define "profile.html"}}banner={{.banner}};bannerError={{.bannerError}};subject={{.subjectID}};keys={{range .keys}}[{{.SiteName}}:{{.Token}}]{{end}}{{end}}
{{define "error.html"}}error={{.error}}{{end}}
`

type profileEnv struct {
	store  *store.Store
	keys   *services.KeyService
	router *gin.Engine

	// identity injected in place of the session middleware; nil = anonymous
	currentUser *models.User

	alice *models.User
	admin *models.User
	site  *models.Site
}

func setupProfileEnv(t *testing.T) *profileEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New("sqlite", filepath.Join(t.TempDir(), "test.db"), &config.Config{
		SeedDemoData: false,
	})
	require.NoError(t, err)

	env := &profileEnv{
		store: s,
		keys:  services.NewKeyService(s, metrics.NewNoopMetrics()),
	}

	env.alice = &models.User{
		Login:        "alice-" + uuid.New().String()[:8],
		PasswordHash: "hash",
		Role:         "user",
	}
	require.NoError(t, s.CreateUser(env.alice))

	env.admin = &models.User{
		Login:        "admin-" + uuid.New().String()[:8],
		PasswordHash: "hash",
		Role:         "admin",
	}
	require.NoError(t, s.CreateUser(env.admin))

	env.site = &models.Site{
		Name:       "Private Blog",
		Domain:     uuid.New().String()[:8] + ".localhost",
		Visibility: models.VisibilityMembersOnly,
	}
	require.NoError(t, s.CreateSite(env.site))

	users := services.NewUserService(s, metrics.NewNoopMetrics())
	h := NewProfileHandler(env.keys, users)

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("").Parse(profileTestTemplates)))
	r.Use(func(c *gin.Context) {
		if env.currentUser != nil {
			middleware.SetIdentity(c, env.currentUser, middleware.AuthMethodSession)
		}
		c.Next()
	})
	r.GET("/profile", h.Show)
	r.POST("/profile/revoke", h.Revoke)
	env.router = r

	return env
}

func (env *profileEnv) do(user *models.User, method, target string, form url.Values) *httptest.ResponseRecorder {
	env.currentUser = user

	body := ""
	if form != nil {
		body = form.Encode()
	}
	req, _ := http.NewRequestWithContext(context.Background(), method, target, strings.NewReader(body))
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// useKey authenticates once so the key shows up in the used-keys listing.
func (env *profileEnv) useKey(t *testing.T, siteID, userID int64) string {
	t.Helper()
	token, err := env.keys.Issue(context.Background(), siteID, userID)
	require.NoError(t, err)
	_, ok := env.keys.Authenticate(context.Background(), siteID, token)
	require.True(t, ok)
	return token
}

func (env *profileEnv) siteIDString() string {
	return strconv.FormatInt(env.site.ID, 10)
}

func userIDString(u *models.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func TestProfileShow_ListsUsedKeys(t *testing.T) {
	env := setupProfileEnv(t)
	token := env.useKey(t, env.site.ID, env.alice.ID)

	w := env.do(env.alice, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "[Private Blog:"+token+"]")
}

func TestProfileShow_UnusedKeysHidden(t *testing.T) {
	env := setupProfileEnv(t)
	_, err := env.keys.Issue(context.Background(), env.site.ID, env.alice.ID)
	require.NoError(t, err)

	w := env.do(env.alice, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "keys=")
	assert.NotContains(t, w.Body.String(), "Private Blog")
}

func TestProfileShow_AnonymousForbidden(t *testing.T) {
	env := setupProfileEnv(t)

	w := env.do(nil, http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProfileRevoke_DeletesSelected(t *testing.T) {
	env := setupProfileEnv(t)
	env.useKey(t, env.site.ID, env.alice.ID)

	w := env.do(env.alice, http.MethodPost, "/profile/revoke", url.Values{
		"site_ids": {env.siteIDString()},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "banner=Deleted 1 feed key(s)")

	_, err := env.store.GetFeedKey(env.site.ID, env.alice.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestProfileRevoke_NothingSelected(t *testing.T) {
	env := setupProfileEnv(t)
	env.useKey(t, env.site.ID, env.alice.ID)

	w := env.do(env.alice, http.MethodPost, "/profile/revoke", url.Values{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bannerError=No feed keys selected")

	// key untouched
	_, err := env.store.GetFeedKey(env.site.ID, env.alice.ID)
	assert.NoError(t, err)
}

func TestProfileRevoke_AlreadyGoneIsSoftError(t *testing.T) {
	env := setupProfileEnv(t)

	// No key was ever issued for this site
	w := env.do(env.alice, http.MethodPost, "/profile/revoke", url.Values{
		"site_ids": {env.siteIDString()},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bannerError=No feed keys were deleted")
}

func TestProfileRevoke_InvalidSiteID(t *testing.T) {
	env := setupProfileEnv(t)

	w := env.do(env.alice, http.MethodPost, "/profile/revoke", url.Values{
		"site_ids": {"not-a-number"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error=Invalid site selection")
}

func TestProfile_AdminOnBehalf(t *testing.T) {
	env := setupProfileEnv(t)
	token := env.useKey(t, env.site.ID, env.alice.ID)

	w := env.do(env.admin, http.MethodGet, "/profile?user="+userIDString(env.alice), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), token)

	w = env.do(env.admin, http.MethodPost,
		"/profile/revoke?user="+userIDString(env.alice), url.Values{
			"site_ids": {env.siteIDString()},
		})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "banner=Deleted 1 feed key(s)")
}

func TestProfile_NonAdminCannotTargetOthers(t *testing.T) {
	env := setupProfileEnv(t)
	env.useKey(t, env.site.ID, env.admin.ID)

	w := env.do(env.alice, http.MethodGet, "/profile?user="+userIDString(env.admin), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "may not manage")
}
