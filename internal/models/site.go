package models

import "time"

// Site visibility levels, ordered from most open to most restricted.
// Values at or above VisibilityMembersOnly's public floor (-1) are served
// without authentication; see the privacy package for the eligibility rule.
const (
	VisibilityWorld        = 1  // visible to everyone, indexed
	VisibilityNoSearch     = 0  // visible to everyone, search engines discouraged
	VisibilityNetworkUsers = -1 // legacy "public" floor
	VisibilityMembersOnly  = -2 // site members must log in
	VisibilityAdminsOnly   = -3 // site admins must log in
)

// Site is one tenant blog within the multi-site installation.
type Site struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"not null"`
	Domain     string `gorm:"uniqueIndex;not null"` // request Host header → site
	Visibility int    `gorm:"not null;default:1"`
	CreatedAt  time.Time
}

// URL returns the canonical base URL for the site.
func (s *Site) URL() string {
	return "http://" + s.Domain
}
