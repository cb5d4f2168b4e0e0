package client

import (
	"os"

	"github.com/redis/go-redis/v9"
)

// RedisClient builds the shared checkpoint store client. Connectivity is not
// verified here: the checkpoint store must be able to start in local-fallback
// mode when Redis is down.
func RedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}
