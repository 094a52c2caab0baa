// Package db manages the MongoDB connection and collection handles.
package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps the mongo client and exposes the application's collections.
// It is constructed once at startup and injected into the services.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB, verifies the connection and returns a Client.
func New(ctx context.Context, uri, dbName string) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB")
	return &Client{client: client, db: client.Database(dbName)}, nil
}

func (c *Client) Users() *mongo.Collection      { return c.db.Collection("users") }
func (c *Client) Chats() *mongo.Collection      { return c.db.Collection("chats") }
func (c *Client) Messages() *mongo.Collection   { return c.db.Collection("messages") }
func (c *Client) Apartments() *mongo.Collection { return c.db.Collection("apartments") }

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes sets up the indexes the query paths rely on: the unique
// email constraint, chat member lookups, per-chat message history and the
// 2dsphere index backing the geospatial listing search.
func (c *Client) CreateIndexes(ctx context.Context) error {
	_, err := c.Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	_, err = c.Chats().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "members", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chats index: %w", err)
	}

	_, err = c.Messages().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create messages index: %w", err)
	}

	_, err = c.Apartments().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create apartments index: %w", err)
	}

	return nil
}
