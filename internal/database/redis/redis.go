// Package redis opens the connection used by the Redis session store.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"fraud-assessment-service/internal/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// Addr joins the configured host and port.
func Addr(cfg config.RedisConfig) string {
	return net.JoinHostPort(cfg.Host, cfg.Port)
}

// Connect dials addr and pings it. The client is closed again when the ping
// fails, so callers only ever own a live connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	slog.Debug("redis connection established", "addr", addr, "db", db)
	return client, nil
}
