package repository

import (
	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/repository/memory"
	"github.com/navikt/meetingsview/internal/repository/redis"
)

var (
	_ Repository = (*memory.Repository)(nil)
	_ Repository = (*redis.Repository)(nil)
)

// NewRepository returns a Redis-backed store when enabled, otherwise an in-memory one
func NewRepository(cfg config.RedisConfig) (Repository, error) {
	if cfg.Enabled {
		repo, err := redis.NewRepository(cfg)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return memory.NewRepository(), nil
}
