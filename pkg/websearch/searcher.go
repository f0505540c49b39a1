package websearch

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"periplo/pkg/config"
	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/poi"
	"periplo/pkg/request"
)

// Engine is a pluggable search backend.
type Engine interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Searcher finds wrecks published on diving center and port authority
// sites that no structured source lists.
type Searcher struct {
	engine    Engine
	extra     Engine          // optional second engine, nil when disabled
	extractor MarineExtractor // optional, drives enhanced mode
	request   *request.Client
	validator *poi.Validator
	log       *slog.Logger

	maxSitesPerTown  int
	maxWrecksPerPage int
	pageFetchTimeout time.Duration
}

// NewSearcher wires a Searcher from configuration. extra and extractor
// may be nil; without an extractor, enhanced mode falls back to
// pattern extraction.
func NewSearcher(cfg *config.MarineConfig, r *request.Client, engine, extra Engine, extractor MarineExtractor, log *slog.Logger) *Searcher {
	maxSites := cfg.MaxSitesPerTown
	if maxSites <= 0 {
		maxSites = 3
	}
	maxWrecks := cfg.MaxWrecksPerPage
	if maxWrecks <= 0 {
		maxWrecks = 5
	}
	timeout := time.Duration(cfg.PageFetchTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Searcher{
		engine:           engine,
		extra:            extra,
		extractor:        extractor,
		request:          r,
		validator:        poi.NewValidator(),
		log:              log,
		maxSitesPerTown:  maxSites,
		maxWrecksPerPage: maxWrecks,
		pageFetchTimeout: timeout,
	}
}

// SearchWrecks queries the web for wrecks around the zone's
// municipalities. Every returned POI lies inside the polygon; wrecks
// without verifiable coordinates are dropped.
func (s *Searcher) SearchWrecks(ctx context.Context, zoneName string, municipalities []string, polygon geo.Polygon, country model.Country, mode string) []model.POI {
	bbox := geo.BoundsOf(polygon)
	towns := FilterMainMunicipalities(municipalities, zoneName)

	var pois []model.POI
	seen := make(map[string]bool)

	search := func(queries []string) {
		for _, query := range queries {
			results := s.runQuery(ctx, query)
			for _, res := range results {
				if !DomainAllowed(resultDomain(res.URL)) {
					continue
				}
				if !isDivingCenterResult(res.URL, res.Title, res.Snippet) {
					continue
				}
				for _, p := range s.poisFromPage(ctx, res, polygon, bbox, mode) {
					key := strings.ToLower(p.Name)
					if seen[key] {
						continue
					}
					seen[key] = true
					pois = append(pois, p)
				}
			}
		}
	}

	for _, town := range towns {
		search(BuildQueries(town, country.Name))
	}
	if len(pois) == 0 {
		search(ZoneQueries(zoneName, country.Name))
	}

	s.log.Info("web search finished", "zone", zoneName, "towns", len(towns), "wrecks", len(pois))
	return pois
}

// resultDomain extracts the host from a result URL for domain checks.
func resultDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// runQuery fans a query out to the configured engines. Engine failures
// are logged and skipped; the other engine may still deliver.
func (s *Searcher) runQuery(ctx context.Context, query string) []Result {
	var results []Result
	for _, engine := range []Engine{s.engine, s.extra} {
		if engine == nil {
			continue
		}
		res, err := engine.Search(ctx, query, s.maxSitesPerTown)
		if err != nil {
			s.log.Warn("search engine failed", "query", query, "error", err)
			continue
		}
		results = append(results, res...)
	}
	if len(results) > s.maxSitesPerTown {
		results = results[:s.maxSitesPerTown]
	}
	return results
}

// poisFromPage fetches a result page and extracts marine POIs from it.
// Enhanced mode hands the filtered text to the LLM extractor and falls
// back to pattern extraction when that fails or finds nothing.
func (s *Searcher) poisFromPage(ctx context.Context, res Result, polygon geo.Polygon, bbox geo.BoundingBox, mode string) []model.POI {
	fetchCtx, cancel := context.WithTimeout(ctx, s.pageFetchTimeout)
	defer cancel()

	body, err := s.request.Get(fetchCtx, res.URL, "")
	if err != nil {
		s.log.Debug("page fetch failed", "url", res.URL, "error", err)
		return nil
	}
	content := string(body)

	if !semanticallyRelevant(content) {
		return nil
	}

	if mode == model.ModeEnhanced && s.extractor != nil {
		if pois := s.extractedPOIs(ctx, res, content, polygon, bbox); len(pois) > 0 {
			return pois
		}
		s.log.Debug("enhanced extraction empty, falling back to patterns", "url", res.URL)
	}

	names := WreckNames(content)
	if len(names) > s.maxWrecksPerPage {
		names = names[:s.maxWrecksPerPage]
	}

	var pois []model.POI
	for _, name := range names {
		if isSuspiciousName(name) {
			continue
		}
		lat, lng, ok := CoordinatesNear(content, name, bbox)
		if !ok {
			// A wreck we cannot place is a wreck we cannot verify.
			continue
		}
		if !polygon.Contains(geo.Point{Lat: lat, Lng: lng}) {
			continue
		}
		if !s.validator.CheckKnownWreck(name, lat, lng, true) {
			continue
		}

		p := model.POI{
			Name:        name,
			Description: DescriptionFor(content, name),
			Lat:         lat,
			Lng:         lng,
			Source:      model.SourceWebSearch,
			Type:        model.TypeMarine,
			MarineType:  model.MarineWreck,
			URL:         res.URL,
		}
		if depth, ok := DepthNear(content, name); ok {
			p.DepthM = depth
			p.DepthKnown = true
		}
		p.RelevanceScore = poi.Score(&p)
		pois = append(pois, p)
	}
	return pois
}

// extractedPOIs runs the LLM extractor over the marine paragraphs of a
// page and verifies each site the same way pattern hits are verified.
func (s *Searcher) extractedPOIs(ctx context.Context, res Result, content string, polygon geo.Polygon, bbox geo.BoundingBox) []model.POI {
	text := MarineParagraphs(content)
	if text == "" {
		return nil
	}

	sites, err := s.extractor.ExtractSites(ctx, text)
	if err != nil {
		s.log.Warn("marine extraction failed", "url", res.URL, "error", err)
		return nil
	}

	var pois []model.POI
	for _, site := range sites {
		if site.Confidence < minExtractConfidence || !validExtractedName(site.Name) {
			continue
		}
		lat, lng, ok := CoordinatesNear(content, site.Name, bbox)
		if !ok {
			continue
		}
		if !polygon.Contains(geo.Point{Lat: lat, Lng: lng}) {
			continue
		}
		if !s.validator.CheckKnownWreck(site.Name, lat, lng, true) {
			continue
		}

		p := model.POI{
			Name:        site.Name,
			Description: site.Description,
			Lat:         lat,
			Lng:         lng,
			Source:      model.SourceWebSearch,
			Type:        model.TypeMarine,
			MarineType:  marineTypeFor(site.Kind),
			URL:         res.URL,
		}
		if site.DepthM > 0 {
			p.DepthM = site.DepthM
			p.DepthKnown = true
		} else if depth, ok := DepthNear(content, site.Name); ok {
			p.DepthM = depth
			p.DepthKnown = true
		}
		p.RelevanceScore = poi.Score(&p)
		pois = append(pois, p)
		if len(pois) == s.maxWrecksPerPage {
			break
		}
	}
	return pois
}

// marineTypeFor maps an extractor's free-form site kind to a marine
// subtype.
func marineTypeFor(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "wreck", "relitto", "épave", "pecio", "wrack", "shipwreck":
		return model.MarineWreck
	case "reef", "secca", "shoal":
		return model.MarineReef
	case "cave", "grotta", "grotte":
		return model.MarineCave
	case "diving_site", "dive site", "immersione", "diving":
		return model.MarineDivingSite
	default:
		return model.MarineGeneric
	}
}
