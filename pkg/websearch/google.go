package websearch

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/url"

	"periplo/pkg/request"
)

// GoogleCSE searches the Google Custom Search JSON API. Optional: it
// only runs when a key and engine ID are configured, as a supplement
// to the default engine.
type GoogleCSE struct {
	request  *request.Client
	Endpoint string
	Key      string
	EngineID string
}

// NewGoogleCSE creates a client. Returns nil when key or engine ID are
// missing, which callers treat as "disabled".
func NewGoogleCSE(r *request.Client, endpoint, key, engineID string) *GoogleCSE {
	if key == "" || engineID == "" {
		return nil
	}
	if endpoint == "" {
		endpoint = "https://www.googleapis.com/customsearch/v1"
	}
	return &GoogleCSE{request: r, Endpoint: endpoint, Key: key, EngineID: engineID}
}

type cseResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// Search runs a query and returns up to maxResults hits.
func (c *GoogleCSE) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("key", c.Key)
	params.Set("cx", c.EngineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", maxResults))
	u := c.Endpoint + "?" + params.Encode()

	cacheKey := fmt.Sprintf("cse_%x", md5.Sum([]byte(query)))
	body, err := c.request.Get(ctx, u, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("google cse search failed: %w", err)
	}

	var resp cseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("google cse response malformed: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{URL: item.Link, Title: item.Title, Snippet: item.Snippet})
	}
	return results, nil
}
