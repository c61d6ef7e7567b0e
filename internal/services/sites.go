package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/cache"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/store"
)

// SiteService resolves sites, caching by-domain lookups since every request
// pays one on the hot path.
type SiteService struct {
	store    *store.Store
	cache    cache.Cache[models.Site]
	cacheTTL time.Duration
}

func NewSiteService(s *store.Store, c cache.Cache[models.Site], ttl time.Duration) *SiteService {
	return &SiteService{
		store:    s,
		cache:    c,
		cacheTTL: ttl,
	}
}

func siteDomainCacheKey(domain string) string {
	return "site:domain:" + domain
}

// GetByDomain resolves the site serving the given host name.
func (s *SiteService) GetByDomain(ctx context.Context, domain string) (*models.Site, error) {
	site, err := cache.GetWithFetch(ctx, s.cache, siteDomainCacheKey(domain), s.cacheTTL,
		func(ctx context.Context, _ string) (models.Site, error) {
			found, err := s.store.GetSiteByDomain(domain)
			if err != nil {
				return models.Site{}, err
			}
			return *found, nil
		})
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// ListPosts returns the site's most recent posts, newest first.
func (s *SiteService) ListPosts(ctx context.Context, siteID int64, limit int) ([]models.Post, error) {
	return s.store.ListPostsBySite(siteID, limit)
}

// UpdateSite persists site changes and invalidates the domain cache entry.
func (s *SiteService) UpdateSite(ctx context.Context, site *models.Site) error {
	if err := s.store.UpdateSite(site); err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}
	_ = s.cache.Delete(ctx, siteDomainCacheKey(site.Domain))
	return nil
}
