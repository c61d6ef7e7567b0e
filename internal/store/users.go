package store

import (
	"errors"

	"github.com/adamfranco/private-feed-keys/internal/models"

	"gorm.io/gorm"
)

// User operations

func (s *Store) GetUserByLogin(login string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("login = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}
