package repository

import (
	"context"
	"errors"
	"fmt"

	"marketbay_backend/platform/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const mediaNotFoundMessage = "media not found"

// Repo implements the media repository over the media collection.
type Repo struct {
	col *mongo.Collection
}

// New creates a new media repository.
func New(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection("media")}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// EnsureIndexes creates the product lookup index.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "productId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure media indexes: %w", err)
	}
	return nil
}

// Create inserts a media record.
func (r *Repo) Create(ctx context.Context, media Media) error {
	if _, err := r.col.InsertOne(ctx, media); err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

// GetByID fetches a media record by id.
func (r *Repo) GetByID(ctx context.Context, id string) (Media, error) {
	var media Media
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&media)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Media{}, apperr.NotFound(mediaNotFoundMessage)
	}
	if err != nil {
		return Media{}, fmt.Errorf("get media by id: %w", err)
	}
	return media, nil
}

// ListByProduct returns the media records of a product.
func (r *Repo) ListByProduct(ctx context.Context, productID string) ([]Media, error) {
	cursor, err := r.col.Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return nil, fmt.Errorf("find media: %w", err)
	}
	defer cursor.Close(ctx)

	var items []Media
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode media: %w", err)
	}
	return items, nil
}

// CountByProduct reports how many images a product carries.
func (r *Repo) CountByProduct(ctx context.Context, productID string) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"productId": productID})
	if err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return count, nil
}

// Update swaps the stored object reference of an existing record.
func (r *Repo) Update(ctx context.Context, media Media) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": media.ID}, bson.M{"$set": bson.M{
		"objectKey":   media.ObjectKey,
		"contentType": media.ContentType,
	}})
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(mediaNotFoundMessage)
	}
	return nil
}

// Delete removes a media record.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(mediaNotFoundMessage)
	}
	return nil
}

// DeleteByProduct removes every record of a product and returns them.
func (r *Repo) DeleteByProduct(ctx context.Context, productID string) ([]Media, error) {
	items, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"productId": productID}); err != nil {
		return nil, fmt.Errorf("delete media by product: %w", err)
	}
	return items, nil
}
