// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"courtside/config"

	"github.com/go-redis/redis/v8"
)

// StagingClient holds staged checkouts, pending-session markers and processed-session keys.
var StagingClient *redis.Client

// InitStagingCache initializes the Redis client backing the checkout staging area.
func InitStagingCache() {
	StagingClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisStagingDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := StagingClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Staging): %v", err)
	}
}

// GetStagingClient returns the staging Redis client.
func GetStagingClient() *redis.Client {
	if StagingClient == nil {
		InitStagingCache()
	}
	return StagingClient
}
