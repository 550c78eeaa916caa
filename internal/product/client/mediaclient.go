package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"marketbay_backend/internal/auth"
)

// MediaItem is an image record as reported by the media service.
type MediaItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	ObjectKey string `json:"objectKey"`
}

// ImageUpload carries one image file towards the media service.
type ImageUpload struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
}

// MediaClient drives the media service's internal endpoints on behalf of
// the product service.
type MediaClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

// NewMediaClient creates a client for the media service.
func NewMediaClient(baseURL, internalToken string, timeout time.Duration) *MediaClient {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &MediaClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		internalToken: internalToken,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Upload attaches one image to a product.
func (c *MediaClient) Upload(ctx context.Context, productID string, image ImageUpload) (MediaItem, error) {
	body := &strings.Builder{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, image.FileName))
	header.Set("Content-Type", image.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return MediaItem{}, fmt.Errorf("build image upload form: %w", err)
	}
	if _, err := io.Copy(part, image.Reader); err != nil {
		return MediaItem{}, fmt.Errorf("copy image into upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return MediaItem{}, fmt.Errorf("finish image upload form: %w", err)
	}

	endpoint := c.baseURL + "/api/media/internal/" + productID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return MediaItem{}, fmt.Errorf("build image upload request: %w", err)
	}
	req.Header.Set(auth.HeaderInternalToken, c.internalToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return MediaItem{}, fmt.Errorf("call media service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return MediaItem{}, fmt.Errorf("image upload returned status %d", resp.StatusCode)
	}

	var item MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return MediaItem{}, fmt.Errorf("decode image upload response: %w", err)
	}
	return item, nil
}

// ListByProduct returns the images attached to a product. A product with
// no images yields an empty slice.
func (c *MediaClient) ListByProduct(ctx context.Context, productID string) ([]MediaItem, error) {
	endpoint := c.baseURL + "/api/media/internal/product/" + productID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build media list request: %w", err)
	}
	req.Header.Set(auth.HeaderInternalToken, c.internalToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call media service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media list returned status %d", resp.StatusCode)
	}

	var items []MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode media list response: %w", err)
	}
	return items, nil
}

// DeleteByProduct removes every image attached to a product.
func (c *MediaClient) DeleteByProduct(ctx context.Context, productID string) error {
	endpoint := c.baseURL + "/api/media/internal/product/" + productID
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build media delete request: %w", err)
	}
	req.Header.Set(auth.HeaderInternalToken, c.internalToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call media service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media delete returned status %d", resp.StatusCode)
	}
	return nil
}
