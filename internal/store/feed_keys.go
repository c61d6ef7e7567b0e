package store

import (
	"errors"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/models"

	"gorm.io/gorm"
)

// Feed Key operations

// GetFeedKey retrieves the key for a (site, user) pair.
func (s *Store) GetFeedKey(siteID, userID int64) (*models.FeedKey, error) {
	var key models.FeedKey
	err := s.db.Where("site_id = ? AND user_id = ?", siteID, userID).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &key, nil
}

// GetFeedKeyByToken resolves a presented token within a site. Lookup misses
// are reported as ErrRecordNotFound; callers on the request path treat them
// as a no-op, never as a failure.
func (s *Store) GetFeedKeyByToken(siteID int64, token string) (*models.FeedKey, error) {
	var key models.FeedKey
	err := s.db.Where("site_id = ? AND token = ?", siteID, token).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &key, nil
}

// CreateFeedKey inserts a new key row. The composite primary key on
// (site_id, user_id) makes the insert the single point of truth for
// uniqueness; a conflict with a concurrent insert surfaces as
// ErrDuplicateKey.
func (s *Store) CreateFeedKey(key *models.FeedKey) error {
	if err := s.db.Create(key).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// TouchFeedKey records one successful authenticated use: bumps
// access_count atomically in SQL (never read-modify-write from an
// application-held value) and sets last_access_at.
func (s *Store) TouchFeedKey(siteID, userID int64) error {
	return s.db.Model(&models.FeedKey{}).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Updates(map[string]any{
			"access_count":   gorm.Expr("access_count + 1"),
			"last_access_at": time.Now(),
		}).Error
}

// ListUsedFeedKeysByUser returns the user's keys that have authenticated at
// least one request, least recently used first.
func (s *Store) ListUsedFeedKeysByUser(userID int64) ([]models.FeedKey, error) {
	var keys []models.FeedKey
	err := s.db.Where("user_id = ? AND access_count > 0", userID).
		Order("last_access_at ASC").
		Find(&keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteFeedKeys removes the user's keys for the selected sites and reports
// how many rows were actually deleted.
func (s *Store) DeleteFeedKeys(userID int64, siteIDs []int64) (int64, error) {
	if len(siteIDs) == 0 {
		return 0, nil
	}
	res := s.db.Where("user_id = ? AND site_id IN ?", userID, siteIDs).
		Delete(&models.FeedKey{})
	return res.RowsAffected, res.Error
}
