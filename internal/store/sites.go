package store

import (
	"errors"

	"github.com/adamfranco/private-feed-keys/internal/models"

	"gorm.io/gorm"
)

// Site operations

func (s *Store) GetSiteByDomain(domain string) (*models.Site, error) {
	var site models.Site
	if err := s.db.Where("domain = ?", domain).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &site, nil
}

// GetSitesByIDs returns the named sites as an id-keyed map for easy lookup.
func (s *Store) GetSitesByIDs(siteIDs []int64) (map[int64]*models.Site, error) {
	if len(siteIDs) == 0 {
		return make(map[int64]*models.Site), nil
	}

	var sites []models.Site
	if err := s.db.Where("id IN ?", siteIDs).Find(&sites).Error; err != nil {
		return nil, err
	}

	siteMap := make(map[int64]*models.Site, len(sites))
	for i := range sites {
		siteMap[sites[i].ID] = &sites[i]
	}
	return siteMap, nil
}

func (s *Store) CreateSite(site *models.Site) error {
	return s.db.Create(site).Error
}

func (s *Store) UpdateSite(site *models.Site) error {
	return s.db.Save(site).Error
}

// Post operations

func (s *Store) CreatePost(post *models.Post) error {
	return s.db.Create(post).Error
}

// ListPostsBySite returns the site's most recent posts, newest first.
func (s *Store) ListPostsBySite(siteID int64, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Where("site_id = ?", siteID).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
