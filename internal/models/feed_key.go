package models

import (
	"time"
)

// FeedKey grants feed-only authenticated access for one (site, user) pair.
// The token is a 40-character hex digest, unique within a site. At most one
// live key exists per user per site; revocation deletes the row.
type FeedKey struct {
	SiteID       int64      `gorm:"primaryKey;autoIncrement:false;index:idx_feed_keys_site_token,unique"`
	UserID       int64      `gorm:"primaryKey;autoIncrement:false"`
	Token        string     `gorm:"size:40;not null;index:idx_feed_keys_site_token,unique"`
	CreatedAt    time.Time
	LastAccessAt *time.Time `gorm:"index"` // nil until the key authenticates a feed request
	AccessCount  int64      `gorm:"not null;default:0"`
}

// Used reports whether this key has authenticated at least one feed request.
func (k *FeedKey) Used() bool {
	return k.AccessCount > 0
}
