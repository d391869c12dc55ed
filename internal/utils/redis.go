// Package utils: connection helpers for Postgres and Redis driven by environment variables.
package utils

import (
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"parks-geojson/internal/logger"
)

// OpenRedis opens a client for addr; an empty addr disables the cache.
func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv opens a client from REDIS_HOST, REDIS_PORT, REDIS_PASS and REDIS_DB.
// Constraint: returns nil when REDIS_HOST is unset; a bad REDIS_DB falls back to 0.
func OpenRedisFromEnv() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	addr := host + ":" + envOr("REDIS_PORT", "6379")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	logger.L().Debug().Str("addr", addr).Int("db", db).Msg("redis_env")
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
