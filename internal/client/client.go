// Package client is the Go consumer side of the search API: an HTTP
// client plus a controller that debounces filter changes and discards
// stale responses.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"core/internal/model"
)

// Client calls the search API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search executes one property search.
func (c *Client) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	endpoint := c.baseURL + "/api/properties/search?" + searchQuery(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if resp.StatusCode == http.StatusBadRequest && body.Error != "" {
			return nil, model.NewValidationError(body.Error)
		}
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, body.Error)
	}

	var result model.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return &result, nil
}

// searchQuery flattens a request into query parameters, omitting
// unset filters.
func searchQuery(req model.SearchRequest) url.Values {
	v := url.Values{}
	v.Set("property_type", req.Category)
	v.Set("page", strconv.Itoa(req.Page))
	v.Set("per_page", strconv.Itoa(req.PerPage))

	f := req.Filters
	setFloat(v, "min_price", f.MinPrice)
	setFloat(v, "max_price", f.MaxPrice)
	setInt(v, "min_beds", f.MinBeds)
	setInt(v, "max_beds", f.MaxBeds)
	setFloat(v, "min_baths", f.MinBaths)
	setFloat(v, "max_baths", f.MaxBaths)
	setInt(v, "min_sqft", f.MinSqft)
	setInt(v, "max_sqft", f.MaxSqft)
	if f.City != nil {
		v.Set("city", *f.City)
	}
	if f.ZipCode != nil {
		v.Set("zip_code", *f.ZipCode)
	}
	return v
}

func setFloat(v url.Values, name string, value *float64) {
	if value != nil {
		v.Set(name, strconv.FormatFloat(*value, 'f', -1, 64))
	}
}

func setInt(v url.Values, name string, value *int) {
	if value != nil {
		v.Set(name, strconv.Itoa(*value))
	}
}
