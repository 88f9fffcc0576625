// Package search wraps the Google Custom Search JSON API, used to find
// product media the catalog is missing.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type Client struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

func NewClient(apiKey, engineID string) *Client {
	return &Client{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  defaultBaseURL,
		client:   &http.Client{},
	}
}

// NewClientWithBaseURL is used by tests to point at a fake endpoint.
func NewClientWithBaseURL(apiKey, engineID, baseURL string) *Client {
	c := NewClient(apiKey, engineID)
	c.baseURL = baseURL
	return c
}

// Configured reports whether both credentials are present. An unconfigured
// client is a valid no-op: media enrichment is skipped, the answer is still
// served.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

// ImageURL returns a direct link to the best image match for query, or ""
// when nothing was found.
func (c *Client) ImageURL(ctx context.Context, query string) (string, error) {
	results, err := c.search(ctx, query, 1, true)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].Link, nil
}

// Search runs a plain web search, up to limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	return c.search(ctx, query, limit, false)
}

func (c *Client) search(ctx context.Context, query string, limit int, images bool) ([]Result, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("search client is not configured")
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))
	if images {
		params.Set("searchType", "image")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call custom search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("custom search returned status %d", resp.StatusCode)
	}

	var respBody struct {
		Items []Result `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return respBody.Items, nil
}
