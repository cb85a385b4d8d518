// Package mongo bootstraps the document store: client connection and the
// unique indexes the uniqueness invariants rely on.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the unique indexes on users (email, usernameLower)
// and cocktails (name). Pre-insert existence checks only improve error
// messages; these indexes are what actually closes the check-then-insert
// race. cocktailNameCI switches the name index to a case-insensitive
// collation.
func EnsureIndexes(ctx context.Context, db *mongo.Database, cocktailNameCI bool) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "usernameLower", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	nameOpts := options.Index().SetUnique(true)
	if cocktailNameCI {
		nameOpts = nameOpts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}
	_, err = db.Collection("cocktails").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: nameOpts,
	})
	if err != nil {
		return fmt.Errorf("create cocktail indexes: %w", err)
	}
	return nil
}
