package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/cache"
	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/privacy"
	"github.com/adamfranco/private-feed-keys/internal/services"
	"github.com/adamfranco/private-feed-keys/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store *store.Store
	keys  *services.KeyService
	users *services.UserService
	sites *services.SiteService

	restricted *models.Site
	public     *models.Site
	alice      *models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New("sqlite", filepath.Join(t.TempDir(), "test.db"), &config.Config{
		SeedDemoData: false,
	})
	require.NoError(t, err)

	env := &testEnv{
		store: s,
		keys:  services.NewKeyService(s, metrics.NewNoopMetrics()),
		users: services.NewUserService(s, metrics.NewNoopMetrics()),
		sites: services.NewSiteService(s, cache.NewMemoryCache[models.Site](), time.Minute),
	}

	env.restricted = &models.Site{
		Name:       "Private Blog",
		Domain:     "private-" + uuid.New().String()[:8] + ".localhost",
		Visibility: models.VisibilityMembersOnly,
	}
	require.NoError(t, s.CreateSite(env.restricted))

	env.public = &models.Site{
		Name:       "Public Blog",
		Domain:     "public-" + uuid.New().String()[:8] + ".localhost",
		Visibility: models.VisibilityWorld,
	}
	require.NoError(t, s.CreateSite(env.public))

	env.alice = &models.User{
		Login:        "alice-" + uuid.New().String()[:8],
		PasswordHash: "hash",
		Role:         "user",
	}
	require.NoError(t, s.CreateUser(env.alice))

	return env
}

// newRouter assembles the production middleware chain plus handlers that
// echo the resolved identity. pre, when non-nil, runs before the feed key
// authenticator (stand-in for an earlier authentication mechanism).
func (env *testEnv) newRouter(pre gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(ResolveSite(env.sites))
	if pre != nil {
		r.Use(pre)
	}
	r.Use(FeedKeyAuth(env.keys, env.users))
	r.Use(SessionIdentity(env.users))

	echo := func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, "user:%d method:%s", user.ID, AuthMethod(c))
			return
		}
		c.String(http.StatusOK, "anonymous")
	}

	content := r.Group("")
	content.Use(EnforcePrivacy(privacy.NewThresholdEligibility()))
	{
		content.GET("/feed", echo)
		content.GET("/feed/:format", echo)
		content.GET("/page", echo)
	}
	return r
}

func (env *testEnv) get(r *gin.Engine, host, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, target, nil)
	req.Host = host
	r.ServeHTTP(w, req)
	return w
}

func (env *testEnv) issue(t *testing.T, siteID, userID int64) string {
	t.Helper()
	token, err := env.keys.Issue(context.Background(), siteID, userID)
	require.NoError(t, err)
	return token
}

func TestFeedKeyAuth_ValidTokenAuthenticates(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	w := env.get(r, env.restricted.Domain, "/feed?FEED_KEY="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "method:feed_key")

	key, err := env.store.GetFeedKey(env.restricted.ID, env.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, key.AccessCount)
	assert.NotNil(t, key.LastAccessAt)
}

func TestFeedKeyAuth_LowercaseParamAccepted(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	w := env.get(r, env.restricted.Domain, "/feed?feed_key="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "method:feed_key")

	key, err := env.store.GetFeedKey(env.restricted.ID, env.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, key.AccessCount)
}

func TestFeedKeyAuth_UppercaseParamWins(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	// First non-empty wins: a bogus lowercase value does not shadow
	// the uppercase one.
	w := env.get(r, env.restricted.Domain,
		"/feed?feed_key=0000000000000000000000000000000000000000&FEED_KEY="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "method:feed_key")
}

func TestFeedKeyAuth_UnknownTokenFailsOpen(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)

	// On a public site, a bad token must leave the response identical to
	// the same request without the parameter.
	without := env.get(r, env.public.Domain, "/feed")
	with := env.get(r, env.public.Domain,
		"/feed?FEED_KEY=ffffffffffffffffffffffffffffffffffffffff")

	assert.Equal(t, without.Code, with.Code)
	assert.Equal(t, without.Body.String(), with.Body.String())
	assert.Equal(t, "anonymous", with.Body.String())
}

func TestFeedKeyAuth_UnknownTokenOnRestrictedSite(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)

	// Privacy enforcement treats the request exactly like an anonymous one
	without := env.get(r, env.restricted.Domain, "/feed")
	with := env.get(r, env.restricted.Domain,
		"/feed?FEED_KEY=ffffffffffffffffffffffffffffffffffffffff")

	assert.Equal(t, http.StatusUnauthorized, without.Code)
	assert.Equal(t, without.Code, with.Code)
	assert.Equal(t, without.Body.String(), with.Body.String())
}

func TestFeedKeyAuth_NonFeedRequestIgnoresToken(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	// A valid token on a page URL must not authenticate: the key is not a
	// general-purpose login bypass.
	without := env.get(r, env.restricted.Domain, "/page")
	with := env.get(r, env.restricted.Domain, "/page?FEED_KEY="+token)

	assert.Equal(t, http.StatusFound, without.Code)
	assert.Equal(t, without.Code, with.Code)

	// And no access was recorded
	key, err := env.store.GetFeedKey(env.restricted.ID, env.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, key.AccessCount)
}

func TestFeedKeyAuth_TokenScopedToSite(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	other := &models.Site{
		Name:       "Other Private Blog",
		Domain:     "other-" + uuid.New().String()[:8] + ".localhost",
		Visibility: models.VisibilityMembersOnly,
	}
	require.NoError(t, env.store.CreateSite(other))

	// Alice's key for one site must not open another site's feed
	w := env.get(r, other.Domain, "/feed?FEED_KEY="+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeedKeyAuth_RevokedTokenBehavesLikeUnknown(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	// Use it once so it resolves, then revoke
	w := env.get(r, env.restricted.Domain, "/feed?FEED_KEY="+token)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := env.keys.Revoke(context.Background(), env.alice, env.alice.ID,
		[]int64{env.restricted.ID})
	require.NoError(t, err)

	w = env.get(r, env.restricted.Domain, "/feed?FEED_KEY="+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeedKeyAuth_ExistingIdentityWins(t *testing.T) {
	env := setupTestEnv(t)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	bob := &models.User{
		Login:        "bob-" + uuid.New().String()[:8],
		PasswordHash: "hash",
		Role:         "user",
	}
	require.NoError(t, env.store.CreateUser(bob))

	// An authentication mechanism earlier in the chain already resolved
	// bob; the feed key must not override it.
	r := env.newRouter(func(c *gin.Context) {
		SetIdentity(c, bob, "earlier")
		c.Next()
	})

	w := env.get(r, env.restricted.Domain, "/feed?FEED_KEY="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "method:earlier")

	// No access recorded against alice's key
	key, err := env.store.GetFeedKey(env.restricted.ID, env.alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, key.AccessCount)
}

func TestFeedKeyAuth_FeedFormatPathEligible(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)
	token := env.issue(t, env.restricted.ID, env.alice.ID)

	w := env.get(r, env.restricted.Domain, "/feed/atom?feed_key="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "method:feed_key")
}

func TestResolveSite_UnknownHost(t *testing.T) {
	env := setupTestEnv(t)
	r := env.newRouter(nil)

	w := env.get(r, "missing.localhost", "/feed")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIsFeedRequest(t *testing.T) {
	assert.True(t, IsFeedRequest("/feed"))
	assert.True(t, IsFeedRequest("/feed/atom"))
	assert.False(t, IsFeedRequest("/"))
	assert.False(t, IsFeedRequest("/feedback"))
	assert.False(t, IsFeedRequest("/profile"))
}
