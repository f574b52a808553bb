package storage

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/golog"
)

func NewRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
	golog.Infof("redis initialized with address: %s", addr)
	return client
}

func PingRedis(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
