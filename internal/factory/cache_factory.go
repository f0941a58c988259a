package factory

import (
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/adapters/cache"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/config"
	"github.com/AayushRajthala99/phishing-email-detection-system/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates the response cache from configuration
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

// CreateCacheRepository creates the in-memory cache
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}
	return cache.NewMemoryCache(f.logger, cacheCfg.CleanupFrequency), nil
}
