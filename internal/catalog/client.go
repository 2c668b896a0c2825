/*
Package catalog provides the read-only product search port.

The storefront backend owns product data; this package only consumes its
search endpoint. The Searcher interface is what the suggestion pipeline
depends on, so tests and embedded hosts can substitute their own source.
*/
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ProductSummary is the lightweight product shape returned by the search
// endpoint and snapshotted into the recently-viewed history.
type ProductSummary struct {
	// ID is the stable product identifier.
	ID string `json:"id"`

	// Name is the display name at the time of the search.
	Name string `json:"name"`

	// Price is the listed price at the time of the search.
	Price float64 `json:"price"`

	// ImageRef is a reference (URL or asset key) to the product image.
	ImageRef string `json:"imageRef"`
}

// Searcher is the product search port consumed by the suggestion pipeline.
type Searcher interface {
	// SearchProducts returns up to limit products matching query, starting
	// at offset.
	SearchProducts(ctx context.Context, query string, limit, offset int) ([]ProductSummary, error)
}

// searchResponse mirrors the backend's search payload.
type searchResponse struct {
	Items []ProductSummary `json:"items"`
}

// Client implements Searcher against the storefront REST backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SearchProducts queries GET {base}/api/products/search and decodes the items.
func (c *Client) SearchProducts(ctx context.Context, query string, limit, offset int) ([]ProductSummary, error) {
	endpoint := fmt.Sprintf("%s/api/products/search", c.baseURL)

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return decoded.Items, nil
}
