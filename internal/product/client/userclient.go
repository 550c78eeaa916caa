// Package client holds the product service's HTTP clients for its peer
// services. All calls carry the shared internal token and a bounded
// timeout; callers treat any failure as a denial.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketbay_backend/internal/auth"
)

const defaultTimeout = 3 * time.Second

// InternalUser is the account projection exposed to peer services.
type InternalUser struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Role auth.Role `json:"role"`
}

// UserClient resolves account identities via the user service's internal
// endpoints.
type UserClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

// NewUserClient creates a client for the user service.
func NewUserClient(baseURL, internalToken string, timeout time.Duration) *UserClient {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &UserClient{
		baseURL:       strings.TrimRight(baseURL, "/"),
		internalToken: internalToken,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// GetByEmail resolves an email address to the account behind it.
func (c *UserClient) GetByEmail(ctx context.Context, email string) (InternalUser, error) {
	endpoint := c.baseURL + "/api/users/internal/by-email/" + url.PathEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return InternalUser{}, fmt.Errorf("build user lookup request: %w", err)
	}
	req.Header.Set(auth.HeaderInternalToken, c.internalToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return InternalUser{}, fmt.Errorf("call user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return InternalUser{}, fmt.Errorf("user lookup for %q returned status %d", email, resp.StatusCode)
	}

	var user InternalUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return InternalUser{}, fmt.Errorf("decode user lookup response: %w", err)
	}
	if user.ID == "" {
		return InternalUser{}, fmt.Errorf("user lookup for %q returned an empty id", email)
	}
	return user, nil
}
