package store

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func New(driver, dsn string, cfg *config.Config) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Site{},
		&models.Post{},
		&models.FeedKey{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	// Seed default data
	if err := store.seedData(cfg); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return store, nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64 URL encoding to get a safe, printable password
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

func (s *Store) seedData(cfg *config.Config) error {
	// Create default admin user if no users exist
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		password := ""
		if cfg != nil {
			password = cfg.DefaultAdminPassword
		}
		if password == "" {
			var err error
			password, err = generateRandomPassword(16)
			if err != nil {
				return err
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &models.User{
			Login:        "admin",
			DisplayName:  "Administrator",
			Email:        "admin@localhost",
			PasswordHash: string(hash),
			Role:         "admin",
		}
		if err := s.db.Create(admin).Error; err != nil {
			return err
		}
		log.Printf("Created default user: admin / %s (role: admin)", password)
	}

	if cfg == nil || !cfg.SeedDemoData {
		return nil
	}

	// Create demo sites if none exist: one world-readable, one members-only
	var siteCount int64
	s.db.Model(&models.Site{}).Count(&siteCount)
	if siteCount == 0 {
		sites := []models.Site{
			{
				Name:       "Demo Blog",
				Domain:     "demo.localhost",
				Visibility: models.VisibilityWorld,
			},
			{
				Name:       "Private Blog",
				Domain:     "private.localhost",
				Visibility: models.VisibilityMembersOnly,
			},
		}
		for i := range sites {
			if err := s.db.Create(&sites[i]).Error; err != nil {
				return err
			}
			post := &models.Post{
				SiteID:      sites[i].ID,
				AuthorID:    1,
				Title:       "Welcome to " + sites[i].Name,
				Body:        "First post.",
				PublishedAt: time.Now(),
			}
			if err := s.db.Create(post).Error; err != nil {
				return err
			}
			log.Printf("Created demo site: %s (%s)", sites[i].Name, sites[i].Domain)
		}
	}

	return nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
