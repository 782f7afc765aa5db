// Package redis provides the session-revocation backend. Redis holds only the
// revoked token ids from sign-out; losing it means revoked tokens stay valid
// until they expire, nothing more.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "invoicing-api"
	pingTimeout = 5 * time.Second
)

// Config captures the settings for the revocation store connection.
type Config struct {
	Addr string
	DB   int
	// Timeout bounds the startup ping; pingTimeout when zero.
	Timeout time.Duration
}

// Connect builds the Redis client and fails fast if the store is unreachable,
// so a broken revocation backend surfaces at startup rather than on the first
// sign-out.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = pingTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		DB:         cfg.DB,
		ClientName: clientName,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
