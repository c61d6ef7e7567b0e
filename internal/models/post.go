package models

import "time"

// Post is a published entry on a site, the content feeds are built from.
type Post struct {
	ID          int64  `gorm:"primaryKey"`
	SiteID      int64  `gorm:"not null;index"`
	AuthorID    int64  `gorm:"not null"`
	Title       string `gorm:"not null"`
	Body        string
	PublishedAt time.Time `gorm:"index"`
}
