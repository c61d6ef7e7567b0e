package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/cache"
	"github.com/adamfranco/private-feed-keys/internal/config"
	"github.com/adamfranco/private-feed-keys/internal/models"

	"github.com/appleboy/graceful"
)

// initializeSiteCache selects the site cache backend. The in-memory cache
// is the default; Redis suits multi-instance deployments.
func initializeSiteCache(cfg *config.Config) (cache.Cache[models.Site], error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		addr, password, db, err := parseRedisURL(cfg.CacheRedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_REDIS_URL: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := cache.NewRueidisCache[models.Site](ctx, addr, password, db, "pfk:")
		if err != nil {
			return nil, err
		}
		log.Printf("Site cache: redis (%s)", addr)
		return c, nil
	default:
		log.Printf("Site cache: memory")
		return cache.NewMemoryCache[models.Site](), nil
	}
}

// parseRedisURL extracts addr, password and db from a redis:// URL.
func parseRedisURL(raw string) (addr, password string, db int, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", 0, err
	}
	if u.Scheme != "redis" {
		return "", "", 0, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	addr = u.Host
	if u.User != nil {
		password, _ = u.User.Password()
	}
	if path := strings.TrimPrefix(u.Path, "/"); path != "" {
		db, err = strconv.Atoi(path)
		if err != nil {
			return "", "", 0, fmt.Errorf("invalid db number %q", path)
		}
	}
	return addr, password, db, nil
}

// addSiteCacheShutdownJob adds the cache shutdown handler
func addSiteCacheShutdownJob(m *graceful.Manager, c cache.Cache[models.Site]) {
	if c == nil {
		return
	}
	m.AddShutdownJob(func() error {
		if err := c.Close(); err != nil {
			log.Printf("Error closing site cache: %v", err)
			return err
		}
		return nil
	})
}
