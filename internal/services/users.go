package services

import (
	"errors"
	"fmt"

	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/store"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid login or password")

type UserService struct {
	store   *store.Store
	metrics metrics.Recorder
}

func NewUserService(s *store.Store, m metrics.Recorder) *UserService {
	return &UserService{
		store:   s,
		metrics: m,
	}
}

// Authenticate verifies a login/password pair for interactive sessions.
func (s *UserService) Authenticate(login, password string) (*models.User, error) {
	user, err := s.store.GetUserByLogin(login)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			s.metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordLogin(true)
	return user, nil
}

func (s *UserService) GetUserByID(id int64) (*models.User, error) {
	return s.store.GetUserByID(id)
}
