// internal/db/db.go
package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jkarimi/wacrm-backend/internal/config"
)

var ErrConnectFailed = errors.New("failed to connect to mongo")

// Connect dials MongoDB with retries and returns the database handle. The
// caller owns the client lifecycle and must Disconnect it on shutdown.
func Connect(ctx context.Context, cfg config.Config) (*mongo.Database, error) {
	attempts := cfg.MongoRetries
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.MongoURL).
				SetConnectTimeout(cfg.MongoTimeout),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client.Database(cfg.DBName), nil
			}
			_ = client.Disconnect(ctx)
		}
		time.Sleep(cfg.MongoRetryWait)
	}

	return nil, ErrConnectFailed
}

// EnsureIndexes creates the indexes the repositories query against. Safe to
// call on every start.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "id", Value: 1}}},
		},
		"customers": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "id", Value: 1}}},
		},
		"templates": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "id", Value: 1}}},
		},
		"batches": {
			// Claim query: status scoped by owner, ordered by priority then age.
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "priority", Value: 1}, {Key: "created_at", Value: 1}}},
			{Keys: bson.D{{Key: "id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "claimed_at", Value: 1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "batch_id", Value: 1}, {Key: "status", Value: 1}, {Key: "seq", Value: 1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
