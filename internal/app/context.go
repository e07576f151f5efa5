package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/muzz-social/internal/cache"
	"github.com/oggyb/muzz-social/internal/presence"
)

// AppContext holds shared dependencies (DB, Redis, Logger, presence, etc.)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	// Registry is the process-wide presence directory.
	Registry *presence.Registry
}

// New creates a new AppContext with a fresh presence registry.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Registry:   presence.NewRegistry(),
	}
}
