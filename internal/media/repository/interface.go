package repository

import (
	"context"
	"time"
)

// Media is the stored image record. The bytes live in object storage
// under ObjectKey; this document only tracks the attachment.
type Media struct {
	ID          string    `bson:"_id"`
	ProductID   string    `bson:"productId"`
	ObjectKey   string    `bson:"objectKey"`
	ContentType string    `bson:"contentType"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// Repository is the persistence contract for media records.
type Repository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, media Media) error
	GetByID(ctx context.Context, id string) (Media, error)
	ListByProduct(ctx context.Context, productID string) ([]Media, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
	// Update swaps the stored object reference of an existing record.
	Update(ctx context.Context, media Media) error
	Delete(ctx context.Context, id string) error
	// DeleteByProduct removes every record of a product and returns the
	// removed records so the caller can clean up object storage.
	DeleteByProduct(ctx context.Context, productID string) ([]Media, error)
}
