package transport

import "time"

// CreateProductRequest is the multipart form for product creation.
// Sellers always own what they create; admins must name the owner.
// Up to three images may accompany the form.
type CreateProductRequest struct {
	Name        string `form:"name" validate:"required,min=2,max=200"`
	Description string `form:"description" validate:"max=1000"`
	PriceCents  int64  `form:"priceCents" validate:"required,gt=0"`
	Quantity    int    `form:"quantity" validate:"min=0"`
	OwnerID     string `form:"ownerId" validate:"omitempty,uuid4"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	PriceCents  *int64  `json:"priceCents,omitempty" validate:"omitempty,gt=0"`
	Quantity    *int    `json:"quantity,omitempty" validate:"omitempty,min=0"`
}

// MediaRef points at a stored product image.
type MediaRef struct {
	ID        string `json:"id"`
	ObjectKey string `json:"objectKey"`
}

// ProductResponse hides the owner's account details apart from the
// display name.
type ProductResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	PriceCents  int64      `json:"priceCents"`
	Quantity    int        `json:"quantity"`
	SellerName  string     `json:"sellerName,omitempty"`
	Images      []MediaRef `json:"images"`
	CreatedAt   time.Time  `json:"createdAt"`
}
