package docstore

import (
	"fmt"

	"github.com/rs/zerolog"

	"tradeplan/internal/config"
)

// Open constructs the document store backend named by the configuration.
// An unconfigured ("memory") deployment is allowed but announced once at
// startup, since nothing written to it survives the process.
func Open(cfg config.StoreConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case "sqlite":
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("path", cfg.SQLitePath).Msg("SQLite document store opened")
		return store, nil
	case "redis":
		store, err := NewRedisStore(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("addr", cfg.RedisAddr).Msg("Redis document store connected")
		return store, nil
	case "memory", "":
		logger.Warn().Msg("No persistent document store configured; plans will not survive restarts")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}
