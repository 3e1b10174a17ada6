// Package store owns the lifecycle of the mongo client shared by the ledgers.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the store cannot be reached.
var ErrUnavailable = errors.New("store unavailable")

// Client wraps a connected mongo client and the database in use.
type Client struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  *zap.Logger
}

// Connect opens a client to uri and pings it. The process should not start
// when this fails.
func Connect(ctx context.Context, uri, database string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c := &Client{
		client:  client,
		db:      client.Database(database),
		timeout: timeout,
		logger:  logger,
	}
	if err := c.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to mongo", zap.String("database", database))
	return c, nil
}

// Database returns the configured database.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Ping checks that the primary answers within the connect timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// EnsureIndexes creates the given indexes, keyed by collection name.
func (c *Client) EnsureIndexes(ctx context.Context, indexes map[string][]mongo.IndexModel) error {
	for coll, models := range indexes {
		if len(models) == 0 {
			continue
		}
		names, err := c.db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		c.logger.Info("indexes ensured", zap.String("collection", coll), zap.Strings("indexes", names))
	}
	return nil
}

// Disconnect closes the client.
func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	c.logger.Info("mongo connection closed")
	return nil
}
