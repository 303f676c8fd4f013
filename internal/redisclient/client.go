package redisclient

import (
	"dealscout/internal/config"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client for the seen-cache from configuration.
func New(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
