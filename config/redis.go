package config

import (
	"context"
	"os"
	"github.com/redis/go-redis/v9"
)

// RedisClient is a global Redis client instance
var RedisClient *redis.Client
//Accessed as config.RedisClient in other files

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       getEnvInt("REDIS_DB", 0),
	})
}

// PingRedis drops RedisClient when it is configured but unreachable.
func PingRedis() string {
	if RedisClient == nil {
		return "Redis not configured, sessions kept in process memory."
	}
	if err := RedisClient.Ping(RedisCtx()).Err(); err != nil {
		RedisClient = nil
		return "Redis configured but not reachable, sessions kept in process memory."
	}
	return "Redis connection successful, sessions stored in Redis."
}

func RedisCtx() context.Context {
	return context.Background()
}
