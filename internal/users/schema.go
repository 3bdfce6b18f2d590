package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// namespaceExistsCode is the server error code returned by create when
// the collection already exists.
const namespaceExistsCode = 48

// EnsureSchema provisions the users collection: a $jsonSchema validator
// mirroring the application-level field bounds, a unique index on email
// (the real uniqueness guarantee) and a secondary index on name for
// substring search. Safe to call on every startup.
func EnsureSchema(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"name", "email", "age", "createdAt"},
			"properties": bson.M{
				"name": bson.M{
					"bsonType":  "string",
					"minLength": NameMinLength,
					"maxLength": NameMaxLength,
				},
				"email": bson.M{
					"bsonType": "string",
					"pattern":  `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`,
				},
				"age": bson.M{
					"bsonType": "int",
					"minimum":  AgeMin,
					"maximum":  AgeMax,
				},
				"createdAt": bson.M{
					"bsonType": "date",
				},
			},
		},
	}

	opts := options.CreateCollection().SetValidator(validator)
	if err := db.CreateCollection(ctx, CollectionName, opts); err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != namespaceExistsCode {
			return fmt.Errorf("failed to create users collection: %w", err)
		}
		logger.Debug("Users collection already exists, skipping create")
	} else {
		logger.Info("Created users collection with schema validator")
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_idx"),
		},
	}

	if _, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	logger.Info("User collection schema ensured",
		zap.String("collection", CollectionName))
	return nil
}

// SeedSampleData inserts a handful of sample users into an empty
// collection. A non-empty collection is left untouched.
func SeedSampleData(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	coll := db.Collection(CollectionName)

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		logger.Debug("Users collection not empty, skipping seed data",
			zap.Int64("count", count))
		return nil
	}

	now := time.Now().UTC()
	samples := []interface{}{
		&User{Name: "João Silva", Email: "joao.silva@email.com", Age: 30, CreatedAt: now},
		&User{Name: "Maria Santos", Email: "maria.santos@email.com", Age: 25, CreatedAt: now},
		&User{Name: "Pedro Oliveira", Email: "pedro.oliveira@email.com", Age: 35, CreatedAt: now},
	}

	if _, err := coll.InsertMany(ctx, samples); err != nil {
		return fmt.Errorf("failed to insert sample users: %w", err)
	}

	logger.Info("Inserted sample users", zap.Int("count", len(samples)))
	return nil
}
