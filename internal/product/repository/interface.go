package repository

import (
	"context"
	"time"
)

// Product is the stored catalog document. OwnerID refers to the selling
// user's account id in the user service.
type Product struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	PriceCents  int64     `bson:"priceCents"`
	Quantity    int       `bson:"quantity"`
	OwnerID     string    `bson:"ownerId"`
	OwnerName   string    `bson:"ownerName,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// UpdateFields is the patch applied by Update operations.
type UpdateFields struct {
	Name        *string
	Description *string
	PriceCents  *int64
	Quantity    *int
}

// Repository is the persistence contract for products.
//
// The owner-conditioned mutations exist because the authorization
// pre-check and the mutation are not covered by one transaction: the
// mutation itself re-validates ownership by filtering on the owner id,
// so two racing requests cannot both slip through the pre-check.
type Repository interface {
	Create(ctx context.Context, product Product) error
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Product, error)
	// Update patches a product. When requiredOwner is non-empty the
	// update only applies if the stored owner matches.
	Update(ctx context.Context, id string, fields UpdateFields, requiredOwner string) (Product, error)
	// Delete removes a product under the same owner condition as Update.
	Delete(ctx context.Context, id string, requiredOwner string) error
	// DeleteByOwner removes every product of an owner and returns the
	// ids that were removed. Removing an absent owner is a no-op.
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}
