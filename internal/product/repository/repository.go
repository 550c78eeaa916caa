package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketbay_backend/platform/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productNotFoundMessage = "product not found"

// Repo implements the product repository over the products collection.
type Repo struct {
	col *mongo.Collection
}

// New creates a new product repository.
func New(db *mongo.Database) *Repo {
	return &Repo{col: db.Collection("products")}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a product.
func (r *Repo) Create(ctx context.Context, product Product) error {
	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID fetches a product by id.
func (r *Repo) GetByID(ctx context.Context, id string) (Product, error) {
	var product Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, apperr.NotFound(productNotFoundMessage)
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// List returns all products.
func (r *Repo) List(ctx context.Context) ([]Product, error) {
	return r.find(ctx, bson.M{})
}

// ListByOwner returns the products owned by a user.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Product, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID})
}

// Update patches a product, re-validating ownership in the same storage
// operation when requiredOwner is set.
func (r *Repo) Update(ctx context.Context, id string, fields UpdateFields, requiredOwner string) (Product, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.PriceCents != nil {
		set["priceCents"] = *fields.PriceCents
	}
	if fields.Quantity != nil {
		set["quantity"] = *fields.Quantity
	}

	filter := bson.M{"_id": id}
	if requiredOwner != "" {
		filter["ownerId"] = requiredOwner
	}

	var updated Product
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, r.explainMiss(ctx, id)
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// Delete removes a product under the same owner condition as Update.
func (r *Repo) Delete(ctx context.Context, id string, requiredOwner string) error {
	filter := bson.M{"_id": id}
	if requiredOwner != "" {
		filter["ownerId"] = requiredOwner
	}

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

// DeleteByOwner removes all products of an owner and reports their ids.
func (r *Repo) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	products, err := r.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	if _, err := r.col.DeleteMany(ctx, bson.M{"ownerId": ownerID}); err != nil {
		return nil, fmt.Errorf("delete products by owner: %w", err)
	}
	return ids, nil
}

// explainMiss distinguishes "gone" from "owned by someone else" after a
// zero-match conditional mutation.
func (r *Repo) explainMiss(ctx context.Context, id string) error {
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(productNotFoundMessage)
	}
	if err != nil {
		return fmt.Errorf("inspect product: %w", err)
	}
	return apperr.Forbidden("not the owner of this product")
}

func (r *Repo) find(ctx context.Context, filter bson.M) ([]Product, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
