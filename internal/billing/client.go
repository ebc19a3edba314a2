package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/holoverse/presence/internal/domain"
)

// Client talks to the billing service's entitlement API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
	}
}

type entitlementResponse struct {
	Active bool `json:"active"`
}

func (c *Client) HasActiveEntitlement(ctx context.Context, userID domain.UserID, worldID domain.WorldID) (bool, error) {
	u := fmt.Sprintf("%s/entitlements/%s/%s", c.baseURL,
		url.PathEscape(string(userID)), url.PathEscape(string(worldID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build entitlement request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch entitlement: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("entitlement service status %d", resp.StatusCode)
	}

	var data entitlementResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false, fmt.Errorf("decode entitlement: %w", err)
	}
	return data.Active, nil
}
