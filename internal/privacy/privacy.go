// Package privacy decides which sites require authentication to read,
// and therefore which sites feed keys apply to. The rule is injected as an
// interface so an installation with a different visibility scheme can
// supply its own without touching the key subsystem.
package privacy

import "github.com/adamfranco/private-feed-keys/internal/models"

// Eligibility answers whether a site's feeds are gated, i.e. whether feed
// URLs rendered for authenticated viewers should carry a feed key.
type Eligibility interface {
	// TokenEligible returns true when the site is restricted: its content
	// requires authentication and its feed links should be token-augmented.
	TokenEligible(site *models.Site) bool
}

// ThresholdEligibility treats every visibility level below PublicFloor as
// restricted. The default floor matches the legacy scheme where -1 and
// above meant "public or more open".
type ThresholdEligibility struct {
	PublicFloor int
}

func NewThresholdEligibility() *ThresholdEligibility {
	return &ThresholdEligibility{PublicFloor: models.VisibilityNetworkUsers}
}

func (e *ThresholdEligibility) TokenEligible(site *models.Site) bool {
	return site.Visibility < e.PublicFloor
}
