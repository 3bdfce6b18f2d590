package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the name of the user document collection
const CollectionName = "users"

// MongoStore implements the UserStore interface using MongoDB
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a new user store backed by the given database
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		coll: db.Collection(CollectionName),
	}
}

// FindAll returns all user documents. No ordering is guaranteed.
func (s *MongoStore) FindAll(ctx context.Context) ([]*User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var found []*User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return found, nil
}

// FindByID returns the user with the given id, nil when no document
// matches, or ErrMalformedID when id is not a valid ObjectID.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrMalformedID
	}

	user := &User{}
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// FindByEmail returns the user with the exact email, or nil when no
// document matches.
func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// FindByNameContaining returns users whose name contains the given
// substring. The match is case-sensitive; the input is quoted so regex
// metacharacters match literally.
func (s *MongoStore) FindByNameContaining(ctx context.Context, name string) ([]*User, error) {
	filter := bson.M{"name": primitive.Regex{Pattern: regexp.QuoteMeta(name)}}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var found []*User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return found, nil
}

// Insert persists a new user, assigning its id and creation timestamp.
// A duplicate key on the unique email index is reported as ErrEmailInUse;
// the index is the actual safety net under the service's pre-check.
func (s *MongoStore) Insert(ctx context.Context, user *User) (*User, error) {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()

	_, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Update persists the mutable fields of an already-identified user.
// ID and createdAt are never touched.
func (s *MongoStore) Update(ctx context.Context, user *User) error {
	update := bson.M{"$set": bson.M{
		"name":  user.Name,
		"email": user.Email,
		"age":   user.Age,
	}}

	result, err := s.coll.UpdateByID(ctx, user.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailInUse
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", user.ID.Hex())
	}
	return nil
}

// Delete removes the user with the given id. It reports whether a
// document was removed; a malformed id yields ErrMalformedID.
func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrMalformedID
	}

	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return result.DeletedCount > 0, nil
}
