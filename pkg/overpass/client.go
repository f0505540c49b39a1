// Package overpass queries the OSM Overpass API and maps its elements
// to POIs and settlement records.
package overpass

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"

	"periplo/pkg/request"
)

// Response is the Overpass API JSON envelope.
type Response struct {
	Elements []Element `json:"elements"`
}

// LatLon is a coordinate pair as Overpass emits it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is a single OSM node, way, or relation.
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat,omitempty"`
	Lon      float64           `json:"lon,omitempty"`
	Center   *LatLon           `json:"center,omitempty"`
	Geometry []LatLon          `json:"geometry,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Client executes Overpass queries through the shared request client.
type Client struct {
	request  *request.Client
	Endpoint string
}

// NewClient creates an Overpass client against the given interpreter URL.
func NewClient(r *request.Client, endpoint string) *Client {
	if endpoint == "" {
		endpoint = "https://overpass-api.de/api/interpreter"
	}
	return &Client{request: r, Endpoint: endpoint}
}

// Execute runs a raw Overpass QL query. Responses are cached by query
// hash through the request layer.
func (c *Client) Execute(ctx context.Context, query string) (*Response, error) {
	cacheKey := fmt.Sprintf("overpass_%x", md5.Sum([]byte(query)))
	headers := map[string]string{"Content-Type": "text/plain; charset=utf-8"}

	body, err := c.request.PostWithCache(ctx, c.Endpoint, []byte(query), headers, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("overpass response malformed: %w", err)
	}
	return &resp, nil
}

// Coordinates resolves an element position: node coords, way center,
// or the first geometry point.
func (e *Element) Coordinates() (lat, lng float64, ok bool) {
	switch {
	case e.Type == "node" && (e.Lat != 0 || e.Lon != 0):
		return e.Lat, e.Lon, true
	case e.Center != nil:
		return e.Center.Lat, e.Center.Lon, true
	case len(e.Geometry) > 0:
		return e.Geometry[0].Lat, e.Geometry[0].Lon, true
	}
	return 0, 0, false
}
