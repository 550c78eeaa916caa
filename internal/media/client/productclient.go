// Package client holds the media service's HTTP client for the product
// service's internal ownership check.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketbay_backend/internal/auth"
)

const defaultTimeout = 3 * time.Second

// ErrProductNotFound reports that the product behind an ownership check
// does not exist.
var ErrProductNotFound = fmt.Errorf("product not found")

// ProductClient asks the product service ownership questions.
type ProductClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

// NewProductClient creates a client for the product service.
func NewProductClient(baseURL, internalToken string, timeout time.Duration) *ProductClient {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &ProductClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		internalToken: internalToken,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// ValidateOwnership reports whether the given identity may modify the
// product's media. The identity travels in the forwarded identity
// headers so the product service applies the same rules it applies to
// its own routes. A 404 from the product service means the product is
// gone and surfaces as ErrProductNotFound.
func (c *ProductClient) ValidateOwnership(ctx context.Context, email string, role auth.Role, productID string) (bool, error) {
	endpoint := c.baseURL + "/api/products/internal/validate/" + productID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build ownership check request: %w", err)
	}
	req.Header.Set(auth.HeaderInternalToken, c.internalToken)
	req.Header.Set(auth.HeaderUserEmail, email)
	req.Header.Set(auth.HeaderUserRole, role.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("call product service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, ErrProductNotFound
	default:
		return false, fmt.Errorf("ownership check returned status %d", resp.StatusCode)
	}

	var body struct {
		Owner bool `json:"owner"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode ownership check response: %w", err)
	}
	return body.Owner, nil
}
