// Package mongo holds the MongoDB persistence for the invoicing system: the
// connection bootstrap plus the invoice and user repositories.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	appName        = "invoicing-api"
	defaultTimeout = 10 * time.Second
)

// Config captures the settings for the invoicing database connection.
type Config struct {
	URI      string
	Database string
	// Timeout bounds the initial connect + ping; defaultTimeout when zero.
	Timeout time.Duration
}

// Connect dials MongoDB, verifies connectivity with a ping, and returns the
// client together with the invoicing database handle. The client is needed by
// the caller for shutdown; everything else works against the database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI).SetAppName(appName)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes both collections rely on: the unique
// email index backing duplicate-account detection and the owner/recency
// indexes backing the scoped invoice listing.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := NewInvoiceRepository(db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("invoice indexes: %w", err)
	}
	return nil
}
