// Package nominatim wraps the OSM Nominatim reverse geocoder for the two
// questions the engine asks of it: is this point on water, and which
// country does a zone belong to.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/request"
)

// landIndicators are address keys that mean the reverse lookup landed
// on solid ground.
var landIndicators = []string{
	"city", "town", "village", "hamlet", "suburb", "neighbourhood",
	"road", "building", "house", "farm", "residential",
}

// reverseResponse is the subset of a Nominatim reverse result we read.
type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Client is a Nominatim reverse geocoding client.
type Client struct {
	request  *request.Client
	Endpoint string
	timeout  time.Duration
}

// NewClient creates a Client against the given Nominatim base URL.
func NewClient(r *request.Client, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = "https://nominatim.openstreetmap.org"
	}
	// Reverse lookups sit on the search hot path; 3s is the hard ceiling.
	if timeout <= 0 || timeout > 3*time.Second {
		timeout = 3 * time.Second
	}
	return &Client{request: r, Endpoint: endpoint, timeout: timeout}
}

func (c *Client) reverse(ctx context.Context, pt geo.Point, zoom int) (*reverseResponse, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", fmt.Sprintf("%.6f", pt.Lat))
	q.Set("lon", fmt.Sprintf("%.6f", pt.Lng))
	q.Set("zoom", fmt.Sprintf("%d", zoom))
	u := c.Endpoint + "/reverse?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cacheKey := fmt.Sprintf("nominatim_reverse_%d_%.4f_%.4f", zoom, pt.Lat, pt.Lng)
	body, err := c.request.Get(ctx, u, cacheKey)
	if err != nil {
		return nil, err
	}

	var resp reverseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("nominatim response malformed: %w", err)
	}
	return &resp, nil
}

// GeocodeResult is one forward geocoding hit.
type GeocodeResult struct {
	Name      string
	Lat       float64
	Lng       float64
	PlaceType string
}

type searchResponse struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Class       string `json:"class"`
	Type        string `json:"type"`
}

// Geocode runs a forward search bounded to the given box and returns
// settlement hits.
func (c *Client) Geocode(ctx context.Context, query string, bbox geo.BoundingBox, limit int) ([]GeocodeResult, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("viewbox", fmt.Sprintf("%g,%g,%g,%g", bbox.West, bbox.North, bbox.East, bbox.South))
	q.Set("bounded", "1")
	q.Set("limit", fmt.Sprintf("%d", limit))
	u := c.Endpoint + "/search?" + q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cacheKey := fmt.Sprintf("nominatim_search_%s", strings.ReplaceAll(strings.ToLower(query), " ", "_"))
	body, err := c.request.Get(ctx, u, cacheKey)
	if err != nil {
		return nil, err
	}

	var resp []searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("nominatim response malformed: %w", err)
	}

	var results []GeocodeResult
	for _, r := range resp {
		if r.Class != "place" && r.Class != "boundary" {
			continue
		}
		var lat, lng float64
		if _, err := fmt.Sscanf(r.Lat, "%f", &lat); err != nil {
			continue
		}
		if _, err := fmt.Sscanf(r.Lon, "%f", &lng); err != nil {
			continue
		}
		name := r.Name
		if name == "" {
			name = strings.SplitN(r.DisplayName, ",", 2)[0]
		}
		if name == "" {
			continue
		}
		results = append(results, GeocodeResult{Name: name, Lat: lat, Lng: lng, PlaceType: r.Type})
	}
	return results, nil
}

// IsInWater reports whether the point is on water. A failed or timed out
// lookup counts as water, which keeps marine candidates rather than
// silently dropping them.
func (c *Client) IsInWater(ctx context.Context, pt geo.Point) bool {
	resp, err := c.reverse(ctx, pt, 10)
	if err != nil {
		slog.Debug("Reverse lookup failed, assuming water", "lat", pt.Lat, "lng", pt.Lng, "error", err)
		return true
	}
	if resp.Error != "" {
		// "Unable to geocode" means open sea.
		return true
	}

	text := strings.ToLower(resp.DisplayName)
	for _, ind := range landIndicators {
		if _, ok := resp.Address[ind]; ok {
			return false
		}
		if strings.Contains(text, ind) {
			return false
		}
	}
	return true
}

// DetectCountry resolves the country of a zone from its polygon centroid.
// Transient failures are retried twice before giving up with an empty
// Country, which callers treat as "unknown, default to English".
func (c *Client) DetectCountry(ctx context.Context, polygon geo.Polygon) model.Country {
	centroid := polygon.Centroid()

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return model.Country{}
			case <-time.After(1 * time.Second):
			}
		}

		resp, err := c.reverse(ctx, centroid, 3)
		if err != nil {
			slog.Warn("Country detection attempt failed", "attempt", attempt+1, "error", err)
			continue
		}
		if resp.Error != "" || resp.Address == nil {
			continue
		}

		code := strings.ToLower(resp.Address["country_code"])
		name := resp.Address["country"]
		if code == "" && name == "" {
			continue
		}
		return model.Country{Code: code, Name: name}
	}

	slog.Warn("Country detection failed, language defaults to English")
	return model.Country{}
}

// wikiLanguages maps a country code to the Wikipedia language edition
// most likely to describe its POIs.
var wikiLanguages = map[string]string{
	"it": "it",
	"fr": "fr",
	"es": "es",
	"de": "de",
	"at": "de",
	"ch": "de",
	"pt": "pt",
	"gr": "el",
	"hr": "hr",
	"si": "sl",
	"mt": "en",
	"gb": "en",
	"ie": "en",
	"us": "en",
}

// WikiLanguage returns the Wikipedia language code for a country, with
// English as the fallback.
func WikiLanguage(country model.Country) string {
	if lang, ok := wikiLanguages[country.Code]; ok {
		return lang
	}
	return "en"
}
