// Package wikipedia searches the MediaWiki API for tourist and marine
// POIs around a zone and maps article extracts to POIs.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/poi"
	"periplo/pkg/request"
)

const summaryMaxLen = 200

// marineTerms are appended to the zone name when searching for dive
// targets.
var marineTerms = []string{
	"relitti", "wreck", "shipwreck", "secca", "reef",
	"diving site", "naufragio", "underwater",
}

// irrelevantGeography marks article text that belongs to another part
// of the world entirely. Two or more hits reject the page; famous
// wrecks attract articles about namesakes in the Great Lakes.
var irrelevantGeography = []string{
	"canada", "ontario", "great lakes", "lake ontario", "toronto",
	"nova scotia", "black sea", "caribbean", "pacific ocean",
	"australia", "florida",
}

// Client handles Wikipedia API interactions.
type Client struct {
	request     *request.Client
	APIEndpoint string // Optional override for testing
}

// NewClient creates a new Wikipedia client.
func NewClient(r *request.Client) *Client {
	return &Client{request: r}
}

func (c *Client) endpoint(lang string) string {
	if c.APIEndpoint != "" {
		return c.APIEndpoint
	}
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
}

// SearchTerms builds the query terms for a zone. Coastal zone names get
// sea-facing terms on top of the tourist set.
func SearchTerms(zoneName string) []string {
	terms := []string{
		zoneName,
		zoneName + " turismo",
		zoneName + " monumenti",
		zoneName + " chiese",
		zoneName + " musei",
		zoneName + " castello",
	}

	lower := strings.ToLower(zoneName)
	for _, coastal := range []string{"golfo", "baia", "costa", "riviera", "mare", "isola"} {
		if strings.Contains(lower, coastal) {
			terms = append(terms, zoneName+" porto", zoneName+" faro")
			break
		}
	}
	return terms
}

// MarineSearchTerms builds the marine query terms for a zone.
func MarineSearchTerms(zoneName string) []string {
	terms := make([]string, 0, len(marineTerms))
	for _, t := range marineTerms {
		terms = append(terms, zoneName+" "+t)
	}
	return terms
}

// SearchPOIs searches for land POIs around a zone. Pages without
// resolvable coordinates inside the bounding box are skipped.
func (c *Client) SearchPOIs(ctx context.Context, zoneName string, bbox geo.BoundingBox, lang string) ([]model.POI, error) {
	return c.search(ctx, SearchTerms(zoneName), bbox, lang, model.TypeLand)
}

// SearchMarinePOIs searches for underwater POIs. Pages that read as
// surface features, lack underwater indicators, or describe a distant
// geography are rejected.
func (c *Client) SearchMarinePOIs(ctx context.Context, zoneName string, bbox geo.BoundingBox, lang string) ([]model.POI, error) {
	return c.search(ctx, MarineSearchTerms(zoneName), bbox, lang, model.TypeMarine)
}

func (c *Client) search(ctx context.Context, terms []string, bbox geo.BoundingBox, lang, kind string) ([]model.POI, error) {
	seen := make(map[string]bool)
	var out []model.POI

	for _, term := range terms {
		titles, err := c.searchTitles(ctx, term, lang)
		if err != nil {
			slog.Warn("Wikipedia term search failed", "term", term, "error", err)
			continue
		}

		for _, title := range titles {
			if seen[title] {
				continue
			}
			seen[title] = true

			p, ok, err := c.pagePOI(ctx, title, bbox, lang, kind)
			if err != nil {
				slog.Debug("Wikipedia page fetch failed", "title", title, "error", err)
				continue
			}
			if ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// searchTitles runs a full-text search and returns the matching titles.
func (c *Client) searchTitles(ctx context.Context, term, lang string) ([]string, error) {
	u, _ := url.Parse(c.endpoint(lang))
	q := u.Query()
	q.Add("action", "query")
	q.Add("list", "search")
	q.Add("srsearch", term)
	q.Add("srlimit", "10")
	q.Add("format", "json")
	u.RawQuery = q.Encode()

	cacheKey := fmt.Sprintf("wiki_search_%s_%s", lang, term)
	body, err := c.request.Get(ctx, u.String(), cacheKey)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

// pagePOI fetches a page's extract and coordinates and builds a POI.
func (c *Client) pagePOI(ctx context.Context, title string, bbox geo.BoundingBox, lang, kind string) (model.POI, bool, error) {
	u, _ := url.Parse(c.endpoint(lang))
	q := u.Query()
	q.Add("action", "query")
	q.Add("prop", "extracts|coordinates")
	q.Add("explaintext", "1")
	q.Add("exintro", "1")
	q.Add("titles", title)
	q.Add("format", "json")
	q.Add("redirects", "1")
	u.RawQuery = q.Encode()

	cacheKey := fmt.Sprintf("wiki_page_%s_%s", lang, title)
	body, err := c.request.Get(ctx, u.String(), cacheKey)
	if err != nil {
		return model.POI{}, false, err
	}

	var resp struct {
		Query struct {
			Pages map[string]struct {
				Title       string `json:"title"`
				Extract     string `json:"extract"`
				Coordinates []struct {
					Lat float64 `json:"lat"`
					Lon float64 `json:"lon"`
				} `json:"coordinates"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.POI{}, false, fmt.Errorf("failed to decode json: %w", err)
	}

	for _, page := range resp.Query.Pages {
		lat, lng, hasCoords := 0.0, 0.0, false
		if len(page.Coordinates) > 0 {
			lat, lng = page.Coordinates[0].Lat, page.Coordinates[0].Lon
			hasCoords = true
		} else if fl, fn, ok := ExtractCoordinates(page.Extract); ok {
			lat, lng = fl, fn
			hasCoords = true
		}

		if !hasCoords || !bbox.Contains(geo.Point{Lat: lat, Lng: lng}) {
			return model.POI{}, false, nil
		}

		if kind == model.TypeMarine && !marineRelevant(page.Title, page.Extract) {
			return model.POI{}, false, nil
		}

		p := model.POI{
			Name:        page.Title,
			Description: CleanSummary(page.Extract),
			Lat:         lat,
			Lng:         lng,
			Source:      model.SourceWikipedia,
			Type:        kind,
			Lang:        lang,
			URL:         articleURL(page.Title, lang),
		}
		if kind == model.TypeMarine {
			p.MarineType = model.MarineGeneric
			if poi.HasUnderwaterIndicator(page.Title + " " + page.Extract) {
				p.MarineType = classifyFromText(page.Title + " " + page.Extract)
			}
		}
		p.RelevanceScore = poi.Score(&p)
		return p, true, nil
	}
	return model.POI{}, false, nil
}

// Summary returns the intro extract and lead image of the best article
// match for a name. Used by the enrichment chain; ok is false when no
// article with a usable extract exists.
func (c *Client) Summary(ctx context.Context, name, lang string) (description, imageURL string, ok bool, err error) {
	titles, err := c.searchTitles(ctx, name, lang)
	if err != nil || len(titles) == 0 {
		return "", "", false, err
	}

	u, _ := url.Parse(c.endpoint(lang))
	q := u.Query()
	q.Add("action", "query")
	q.Add("prop", "extracts|pageimages")
	q.Add("explaintext", "1")
	q.Add("exintro", "1")
	q.Add("piprop", "thumbnail")
	q.Add("pithumbsize", "500")
	q.Add("titles", titles[0])
	q.Add("format", "json")
	q.Add("redirects", "1")
	u.RawQuery = q.Encode()

	cacheKey := fmt.Sprintf("wiki_summary_%s_%s", lang, titles[0])
	body, err := c.request.Get(ctx, u.String(), cacheKey)
	if err != nil {
		return "", "", false, err
	}

	var resp struct {
		Query struct {
			Pages map[string]struct {
				Extract   string `json:"extract"`
				Thumbnail struct {
					Source string `json:"source"`
				} `json:"thumbnail"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", false, fmt.Errorf("failed to decode json: %w", err)
	}

	for _, page := range resp.Query.Pages {
		desc := CleanSummary(page.Extract)
		if desc == "" {
			continue
		}
		return desc, page.Thumbnail.Source, true, nil
	}
	return "", "", false, nil
}

// marineRelevant applies the text filters for marine pages: underwater
// indicators required, surface features and distant geographies out.
func marineRelevant(title, extract string) bool {
	text := title + " " + extract

	if !poi.HasUnderwaterIndicator(text) {
		return false
	}
	if poi.IsSurfaceFeature(title) {
		return false
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, g := range irrelevantGeography {
		if strings.Contains(lower, g) {
			hits++
		}
	}
	if hits >= 2 {
		slog.Debug("Wikipedia marine page rejected as foreign geography", "title", title, "hits", hits)
		return false
	}
	return true
}

func classifyFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "wreck") || strings.Contains(lower, "relitto") || strings.Contains(lower, "naufragio"):
		return model.MarineWreck
	case strings.Contains(lower, "reef") || strings.Contains(lower, "secca") || strings.Contains(lower, "shoal"):
		return model.MarineReef
	case strings.Contains(lower, "cave") || strings.Contains(lower, "grotta"):
		return model.MarineCave
	case strings.Contains(lower, "diving") || strings.Contains(lower, "immersion"):
		return model.MarineDivingSite
	}
	return model.MarineGeneric
}

var (
	refPattern   = regexp.MustCompile(`\[\d+\]`)
	coordPattern = regexp.MustCompile(`\{\{[Cc]oord\|(-?\d+(?:\.\d+)?)\|(-?\d+(?:\.\d+)?)[|}]`)
	latPattern   = regexp.MustCompile(`lat(?:itude)?\s*=\s*(-?\d+(?:\.\d+)?)`)
	lonPattern   = regexp.MustCompile(`lon(?:gitude)?\s*=\s*(-?\d+(?:\.\d+)?)`)
)

// CleanSummary strips reference markers and truncates the extract to
// a sentence boundary near 200 characters.
func CleanSummary(s string) string {
	s = refPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	if len(s) <= summaryMaxLen {
		return s
	}
	cut := s[:summaryMaxLen]
	if idx := strings.LastIndex(cut, ". "); idx > 0 {
		return cut[:idx+1]
	}
	return strings.TrimSpace(cut)
}

// ExtractCoordinates pulls coordinates out of raw page text when the
// API carries none: a coord template first, then lat=/lon= pairs.
func ExtractCoordinates(text string) (lat, lng float64, ok bool) {
	if m := coordPattern.FindStringSubmatch(text); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lng, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return lat, lng, true
		}
	}

	mLat := latPattern.FindStringSubmatch(text)
	mLon := lonPattern.FindStringSubmatch(text)
	if mLat != nil && mLon != nil {
		lat, err1 := strconv.ParseFloat(mLat[1], 64)
		lng, err2 := strconv.ParseFloat(mLon[1], 64)
		if err1 == nil && err2 == nil {
			return lat, lng, true
		}
	}
	return 0, 0, false
}

func articleURL(title, lang string) string {
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}
