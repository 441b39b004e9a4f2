package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/cache"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository from the scheme of the
// cache URL: redis, rediss, memory, sqlite or mysql
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}

	scheme, rest, ok := strings.Cut(cacheCfg.URL, "://")
	if !ok {
		return nil, fmt.Errorf("invalid cache URL %q: missing scheme", cacheCfg.URL)
	}

	f.logger.Debug("Creating cache repository", zap.String("scheme", scheme))

	switch scheme {
	case "redis", "rediss":
		return cache.NewRedisCache(context.Background(), cacheCfg.URL, cacheCfg.DialTimeout, f.logger)
	case "memory":
		return cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("invalid cache URL %q: missing database path", cacheCfg.URL)
		}
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(rest), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(rest, f.logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(rest, f.logger, cacheCfg.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported cache scheme: %s", scheme)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}
