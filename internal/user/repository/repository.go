package repository

import (
	"context"
	"errors"
	"fmt"

	"marketbay_backend/platform/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userNotFoundMessage = "user not found"

// Repo implements the user repository over the users collection.
type Repo struct {
	col *mongo.Collection
}

// New creates a new user repository.
func New(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection("users")}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// EnsureIndexes creates the unique email index.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

// Create inserts a new account. A duplicate email maps to a conflict.
func (r *Repo) Create(ctx context.Context, user User) error {
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("email already used")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID fetches an account by id.
func (r *Repo) GetByID(ctx context.Context, id string) (User, error) {
	var user User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, apperr.NotFound(userNotFoundMessage)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail fetches an account by email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, apperr.NotFound(userNotFoundMessage)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// List returns every account.
func (r *Repo) List(ctx context.Context) ([]User, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// Update replaces the stored account document.
func (r *Repo) Update(ctx context.Context, user User) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("email already used")
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

// Delete removes an account by id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}
