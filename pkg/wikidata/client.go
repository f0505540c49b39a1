// Package wikidata queries the Wikidata SPARQL endpoint for tourist and
// marine POIs inside a bounding box.
package wikidata

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/poi"
	"periplo/pkg/request"
)

// touristTypes are the entity classes worth returning as land POIs.
var touristTypes = []string{
	"wd:Q23413",   // castle
	"wd:Q33506",   // museum
	"wd:Q16970",   // church building
	"wd:Q811979",  // architectural structure / monument
	"wd:Q570116",  // tourist attraction
	"wd:Q839954",  // archaeological site
	"wd:Q1107656", // viewpoint
	"wd:Q207694",  // art museum
	"wd:Q2652911", // palace
	"wd:Q44613",   // monastery
	"wd:Q1229071", // fort
}

// marineTypes cover dive targets: wrecks, lighthouses, diving sites.
var marineTypes = []string{
	"wd:Q2867476", // shipwreck
	"wd:Q39715",   // lighthouse
	"wd:Q39825",   // diving site
}

// Client runs SPARQL queries against the Wikidata query service.
type Client struct {
	request  *request.Client
	Endpoint string
}

// NewClient creates a Client against the given SPARQL endpoint.
func NewClient(r *request.Client, endpoint string) *Client {
	if endpoint == "" {
		endpoint = "https://query.wikidata.org/sparql"
	}
	return &Client{request: r, Endpoint: endpoint}
}

// sparqlResponse is the SPARQL JSON results envelope.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// buildQuery assembles the bbox-filtered VALUES query. Labels and
// descriptions come back in the zone language first, then English.
func buildQuery(types []string, b geo.BoundingBox, lang string) string {
	if lang == "" {
		lang = "en"
	}
	langs := lang + ",en"
	if lang == "en" {
		langs = "en"
	}

	return fmt.Sprintf(`SELECT DISTINCT ?item ?itemLabel ?lat ?lon ?description WHERE {
  VALUES ?type { %s }
  ?item wdt:P31/wdt:P279* ?type .

  ?item p:P625 ?coordStatement .
  ?coordStatement psv:P625 ?coordNode .
  ?coordNode wikibase:geoLatitude ?lat .
  ?coordNode wikibase:geoLongitude ?lon .

  FILTER(?lat >= %g && ?lat <= %g && ?lon >= %g && ?lon <= %g) .

  OPTIONAL { ?item schema:description ?description . FILTER(LANG(?description) = "%s" || LANG(?description) = "en") }

  SERVICE wikibase:label { bd:serviceParam wikibase:language "%s" . }
}
LIMIT 100`, strings.Join(types, " "), b.South, b.North, b.West, b.East, lang, langs)
}

// SearchPOIs returns land POIs inside the bounding box.
func (c *Client) SearchPOIs(ctx context.Context, b geo.BoundingBox, lang string) ([]model.POI, error) {
	return c.query(ctx, buildQuery(touristTypes, b, lang), lang, model.TypeLand)
}

// SearchMarinePOIs returns marine POIs inside the bounding box.
// Lighthouses are kept here as route waypoints; the marine pipeline
// decides whether they enter the diveable result set.
func (c *Client) SearchMarinePOIs(ctx context.Context, b geo.BoundingBox, lang string) ([]model.POI, error) {
	return c.query(ctx, buildQuery(marineTypes, b, lang), lang, model.TypeMarine)
}

// EntityCard looks an entity up by name and returns its description
// and image, when it has them. Used by the enrichment chain; ok is
// false when no entity matches.
func (c *Client) EntityCard(ctx context.Context, name, lang string) (description, imageURL string, ok bool, err error) {
	if lang == "" {
		lang = "en"
	}
	sparql := fmt.Sprintf(`SELECT ?item ?description ?image WHERE {
  SERVICE wikibase:mwapi {
    bd:serviceParam wikibase:endpoint "www.wikidata.org" ;
                    wikibase:api "EntitySearch" ;
                    mwapi:search %q ;
                    mwapi:language %q .
    ?item wikibase:apiOutputItem mwapi:item .
  }
  OPTIONAL { ?item schema:description ?description . FILTER(LANG(?description) = %q || LANG(?description) = "en") }
  OPTIONAL { ?item wdt:P18 ?image . }
}
LIMIT 1`, name, lang, lang)

	q := url.Values{}
	q.Set("query", sparql)
	q.Set("format", "json")
	u := c.Endpoint + "?" + q.Encode()

	headers := map[string]string{"Accept": "application/sparql-results+json"}
	cacheKey := fmt.Sprintf("wikidata_entity_%x", md5.Sum([]byte(sparql)))

	body, err := c.request.GetWithHeaders(ctx, u, headers, cacheKey)
	if err != nil {
		return "", "", false, fmt.Errorf("wikidata entity lookup failed: %w", err)
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", false, fmt.Errorf("wikidata response malformed: %w", err)
	}
	if len(resp.Results.Bindings) == 0 {
		return "", "", false, nil
	}

	b := resp.Results.Bindings[0]
	description = b["description"].Value
	imageURL = b["image"].Value
	if description == "" && imageURL == "" {
		return "", "", false, nil
	}
	return description, imageURL, true, nil
}

func (c *Client) query(ctx context.Context, sparql, lang, kind string) ([]model.POI, error) {
	q := url.Values{}
	q.Set("query", sparql)
	q.Set("format", "json")
	u := c.Endpoint + "?" + q.Encode()

	headers := map[string]string{"Accept": "application/sparql-results+json"}
	cacheKey := fmt.Sprintf("wikidata_%x", md5.Sum([]byte(sparql)))

	body, err := c.request.GetWithHeaders(ctx, u, headers, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("wikidata query failed: %w", err)
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("wikidata response malformed: %w", err)
	}

	var out []model.POI
	for _, b := range resp.Results.Bindings {
		p, ok := bindingPOI(b, lang, kind)
		if !ok {
			continue
		}
		out = append(out, p)
	}
	slog.Debug("Wikidata query returned", "kind", kind, "pois", len(out))
	return out, nil
}

func bindingPOI(b map[string]struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}, lang, kind string) (model.POI, bool) {
	name := b["itemLabel"].Value
	if name == "" {
		return model.POI{}, false
	}
	// Bare QID labels mean the item has no label in our languages.
	if strings.HasPrefix(name, "Q") && isAllDigits(name[1:]) {
		return model.POI{}, false
	}

	lat, err1 := strconv.ParseFloat(b["lat"].Value, 64)
	lng, err2 := strconv.ParseFloat(b["lon"].Value, 64)
	if err1 != nil || err2 != nil {
		return model.POI{}, false
	}

	p := model.POI{
		Name:        name,
		Description: b["description"].Value,
		Lat:         lat,
		Lng:         lng,
		Source:      model.SourceWikidata,
		Type:        kind,
		Lang:        lang,
		WikidataID:  entityID(b["item"].Value),
		URL:         b["item"].Value,
	}
	if kind == model.TypeMarine {
		p.MarineType = classifyBinding(name, p.Description)
	}
	p.RelevanceScore = poi.Score(&p)
	return p, true
}

func classifyBinding(name, description string) string {
	lower := strings.ToLower(name + " " + description)
	switch {
	case strings.Contains(lower, "wreck") || strings.Contains(lower, "relitto") || strings.Contains(lower, "naufragio"):
		return model.MarineWreck
	case strings.Contains(lower, "lighthouse") || strings.Contains(lower, "faro"):
		return model.MarineLighthouse
	case strings.Contains(lower, "reef") || strings.Contains(lower, "secca"):
		return model.MarineReef
	case strings.Contains(lower, "diving") || strings.Contains(lower, "immersion"):
		return model.MarineDivingSite
	}
	return model.MarineGeneric
}

// entityID extracts the QID from an entity URI.
func entityID(uri string) string {
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
