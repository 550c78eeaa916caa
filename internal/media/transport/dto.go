package transport

import "time"

// MediaResponse describes one stored product image.
type MediaResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	ObjectKey string    `json:"objectKey"`
	CreatedAt time.Time `json:"createdAt"`
}
