package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	seminarsCollection = "seminars"
	usersCollection    = "users"
)

// Connect opens a client, verifies it with a ping and returns the named database.
// The caller owns the client and must Disconnect it on shutdown.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique email index and the membership indexes used by list queries.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	_, err = db.Collection(seminarsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "agentId", Value: 1}}},
		{Keys: bson.D{{Key: "invitees", Value: 1}}},
		{Keys: bson.D{{Key: "attendees", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create seminar indexes: %w", err)
	}
	return nil
}
