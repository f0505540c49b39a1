// Package dbpedia queries the DBpedia SPARQL endpoint for shipwrecks
// and reefs. It only serves the marine pipeline.
package dbpedia

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

// Client runs SPARQL queries against DBpedia.
type Client struct {
	request  *request.Client
	Endpoint string
}

// NewClient creates a Client against the given SPARQL endpoint.
func NewClient(r *request.Client, endpoint string) *Client {
	if endpoint == "" {
		endpoint = "https://dbpedia.org/sparql"
	}
	return &Client{request: r, Endpoint: endpoint}
}

// buildQuery selects wreck and reef resources inside the bounding box.
// Lighthouses, ports, and harbours are explicitly excluded: DBpedia
// types overlap and a lighthouse often also carries a wreck category.
func buildQuery(b geo.BoundingBox, lang string) string {
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf(`PREFIX dbo: <http://dbpedia.org/ontology/>
PREFIX dbp: <http://dbpedia.org/property/>
PREFIX geo: <http://www.w3.org/2003/01/geo/wgs84_pos#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>

SELECT DISTINCT ?resource ?label ?lat ?long ?abstract WHERE {
  { ?resource a dbo:Shipwreck . }
  UNION { ?resource a dbo:Reef . }
  UNION { ?resource dbp:type ?t . FILTER(regex(str(?t), "shipwreck|wreck", "i")) }

  FILTER NOT EXISTS { ?resource a dbo:Lighthouse . }
  FILTER NOT EXISTS { ?resource a dbo:Port . }
  FILTER NOT EXISTS { ?resource a dbo:Harbour . }

  ?resource geo:lat ?lat .
  ?resource geo:long ?long .
  FILTER(?lat >= %g && ?lat <= %g && ?long >= %g && ?long <= %g) .

  ?resource rdfs:label ?label .
  FILTER(LANG(?label) = "%s" || LANG(?label) = "en") .

  OPTIONAL { ?resource dbo:abstract ?abstract . FILTER(LANG(?abstract) = "%s" || LANG(?abstract) = "en") }
}
LIMIT 100`, b.South, b.North, b.West, b.East, lang, lang)
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// SearchMarinePOIs returns wrecks and reefs inside the bounding box.
func (c *Client) SearchMarinePOIs(ctx context.Context, b geo.BoundingBox, lang string) ([]model.POI, error) {
	sparql := buildQuery(b, lang)

	q := url.Values{}
	q.Set("query", sparql)
	q.Set("format", "json")
	u := c.Endpoint + "?" + q.Encode()

	headers := map[string]string{"Accept": "application/sparql-results+json"}
	cacheKey := fmt.Sprintf("dbpedia_%x", md5.Sum([]byte(sparql)))

	body, err := c.request.GetWithHeaders(ctx, u, headers, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("dbpedia query failed: %w", err)
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("dbpedia response malformed: %w", err)
	}

	seen := make(map[string]bool)
	var out []model.POI
	for _, binding := range resp.Results.Bindings {
		name := binding["label"].Value
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}

		lat, err1 := strconv.ParseFloat(binding["lat"].Value, 64)
		lng, err2 := strconv.ParseFloat(binding["long"].Value, 64)
		if err1 != nil || err2 != nil {
			continue
		}

		text := name + " " + binding["abstract"].Value
		if poi.IsSurfaceFeature(text) {
			continue
		}

		seen[strings.ToLower(name)] = true
		p := model.POI{
			Name:        name,
			Description: truncateAbstract(binding["abstract"].Value),
			Lat:         lat,
			Lng:         lng,
			Source:      model.SourceDBpedia,
			Type:        model.TypeMarine,
			MarineType:  classify(text),
			Lang:        lang,
			DBpediaURI:  binding["resource"].Value,
		}
		p.RelevanceScore = poi.Score(&p)
		out = append(out, p)
	}
	slog.Debug("DBpedia marine query returned", "pois", len(out))
	return out, nil
}

func classify(text string) string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "reef") || strings.Contains(lower, "secca") {
		return model.MarineReef
	}
	return model.MarineWreck
}

func truncateAbstract(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= 300 {
		return s
	}
	cut := s[:300]
	if idx := strings.LastIndex(cut, ". "); idx > 0 {
		return cut[:idx+1]
	}
	return cut
}
