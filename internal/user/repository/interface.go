package repository

import (
	"context"
	"time"

	"marketbay_backend/internal/auth"
)

// User is the stored account document.
type User struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	Role         auth.Role `bson:"role"`
	PasswordHash string    `bson:"passwordHash"`
	AvatarKey    string    `bson:"avatarKey,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Repository is the persistence contract for user accounts.
type Repository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
}
