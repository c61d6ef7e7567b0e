package feed

import (
	"fmt"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/models"

	"github.com/gorilla/feeds"
)

// Supported feed formats
const (
	FormatRSS  = "rss"
	FormatAtom = "atom"
)

// ContentType returns the response content type for a feed format.
func ContentType(format string) string {
	if format == FormatAtom {
		return "application/atom+xml; charset=utf-8"
	}
	return "application/rss+xml; charset=utf-8"
}

// Render builds the site's feed document from its posts. selfURL is the
// already-rewritten URL of the feed itself (it may carry the viewer's
// token).
func Render(site *models.Site, posts []models.Post, selfURL, format string) (string, error) {
	f := &feeds.Feed{
		Title:       site.Name,
		Link:        &feeds.Link{Href: selfURL},
		Description: fmt.Sprintf("Recent posts from %s", site.Name),
		Updated:     time.Now(),
	}
	if len(posts) > 0 {
		f.Updated = posts[0].PublishedAt
	}

	for i := range posts {
		p := &posts[i]
		f.Items = append(f.Items, &feeds.Item{
			Id:          fmt.Sprintf("%s/posts/%d", site.URL(), p.ID),
			Title:       p.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/posts/%d", site.URL(), p.ID)},
			Description: p.Body,
			Created:     p.PublishedAt,
		})
	}

	switch format {
	case FormatAtom:
		return f.ToAtom()
	case FormatRSS:
		return f.ToRss()
	default:
		return "", fmt.Errorf("unsupported feed format: %s", format)
	}
}
