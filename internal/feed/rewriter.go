package feed

import (
	"context"
	"strings"

	"github.com/adamfranco/private-feed-keys/internal/middleware"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/privacy"
	"github.com/adamfranco/private-feed-keys/internal/services"
)

// LinkRewriter appends the viewer's feed key to outbound feed URLs on
// restricted sites. Rendering a link for a viewer without a key lazily
// issues one (idempotent, see KeyService.Issue).
type LinkRewriter struct {
	keys        *services.KeyService
	eligibility privacy.Eligibility
}

func NewLinkRewriter(keys *services.KeyService, eligibility privacy.Eligibility) *LinkRewriter {
	return &LinkRewriter{
		keys:        keys,
		eligibility: eligibility,
	}
}

// Rewrite returns rawURL with the viewer's token appended, or rawURL
// unchanged when no token applies: anonymous viewers carry no identity to
// encode, and public sites never get token-augmented links.
func (r *LinkRewriter) Rewrite(
	ctx context.Context,
	rawURL string,
	viewer *models.User,
	site *models.Site,
) (string, error) {
	if viewer == nil {
		return rawURL, nil
	}
	if !r.eligibility.TokenEligible(site) {
		return rawURL, nil
	}

	token, err := r.keys.Issue(ctx, site.ID, viewer.ID)
	if err != nil {
		return "", err
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + middleware.FeedKeyParamLower + "=" + token, nil
}
