package cache

import (
	appbilling "github.com/farmbook/backend/internal/application/billing"
	"github.com/farmbook/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OutstandingCacheFactory creates outstanding caches based on configuration
type OutstandingCacheFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// OutstandingCacheFactoryOption is a functional option for configuring the factory
type OutstandingCacheFactoryOption func(*OutstandingCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) OutstandingCacheFactoryOption {
	return func(f *OutstandingCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) OutstandingCacheFactoryOption {
	return func(f *OutstandingCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewOutstandingCacheFactory creates a new factory
func NewOutstandingCacheFactory(cfg *config.Config, opts ...OutstandingCacheFactoryOption) *OutstandingCacheFactory {
	f := &OutstandingCacheFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates the outstanding cache for the configured mode. Returns
// nil when caching is disabled; a nil cache is valid and means reads always
// hit the repository. Tries Redis first and falls back to in-memory when
// allowed.
func (f *OutstandingCacheFactory) CreateCache() (appbilling.OutstandingCache, error) {
	if !f.cfg.Cache.Enabled {
		f.logger.Info("outstanding cache disabled")
		return nil, nil
	}

	cache, err := NewRedisOutstandingCache(
		f.cfg.Redis.Addr(),
		f.cfg.Redis.Password,
		f.cfg.Redis.DB,
		f.cfg.Cache.TTL,
	)
	if err == nil {
		f.logger.Info("using Redis outstanding cache",
			zap.String("addr", f.cfg.Redis.Addr()),
			zap.Duration("ttl", f.cfg.Cache.TTL))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, using in-memory outstanding cache",
		zap.Error(err))
	return NewInMemoryOutstandingCache(f.cfg.Cache.TTL), nil
}
