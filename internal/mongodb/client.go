package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Client wraps the MongoDB driver for the user document store
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// MongoConfig represents MongoDB connection configuration
type MongoConfig struct {
	URI            string `json:"uri" yaml:"uri"`
	Database       string `json:"database" yaml:"database"`
	ConnectTimeout int    `json:"connect_timeout" yaml:"connect_timeout"` // seconds
}

// NewClient creates a new MongoDB client and verifies connectivity
func NewClient(config MongoConfig, logger *zap.Logger) (*Client, error) {
	if config.URI == "" {
		return nil, fmt.Errorf("MongoDB URI is required")
	}
	if config.Database == "" {
		return nil, fmt.Errorf("MongoDB database name is required")
	}

	timeout := time.Duration(config.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	// Test connection
	if err := mc.Ping(ctx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	client := &Client{
		client: mc,
		db:     mc.Database(config.Database),
		logger: logger,
	}

	logger.Info("MongoDB client initialized successfully",
		zap.String("database", config.Database))

	return client, nil
}

// Database returns the configured database handle
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Collection returns a collection handle in the configured database
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Close disconnects the underlying driver
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Name identifies this checker in health output
func (c *Client) Name() string {
	return "mongodb"
}

// IsCritical reports whether a failed check should fail startup
func (c *Client) IsCritical() bool {
	return true
}

// HealthCheck pings the primary to verify the connection is alive
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}
