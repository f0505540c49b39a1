// Package engine orchestrates a zone search: country detection,
// provider fan-out, merging, dedup, the marine pipeline, enrichment,
// and result assembly.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"periplo/pkg/cache"
	"periplo/pkg/config"
	"periplo/pkg/geo"
	"periplo/pkg/marine"
	"periplo/pkg/model"
	"periplo/pkg/nominatim"
	"periplo/pkg/overpass"
	"periplo/pkg/poi"
)

// ZoneSource searches land POIs with zone-derived terms.
type ZoneSource interface {
	SearchPOIs(ctx context.Context, zoneName string, bbox geo.BoundingBox, lang string) ([]model.POI, error)
}

// BBoxSource searches land POIs by bounding box.
type BBoxSource interface {
	SearchPOIs(ctx context.Context, bbox geo.BoundingBox, lang string) ([]model.POI, error)
}

// CountryDetector resolves zone country metadata.
type CountryDetector interface {
	DetectCountry(ctx context.Context, polygon geo.Polygon) model.Country
}

// MunicipalityDiscoverer finds the settlements of a zone.
type MunicipalityDiscoverer interface {
	Discover(ctx context.Context, zoneName string, polygon geo.Polygon) []model.Municipality
}

// MarineExplorer runs the marine sub-pipeline.
type MarineExplorer interface {
	Explore(ctx context.Context, req marine.Request) marine.Result
}

// Enricher fills missing POI descriptions.
type Enricher interface {
	EnrichPOIs(ctx context.Context, zoneName string, pois []model.POI) []model.POI
}

// ErrInvalidRequest marks request validation failures, as opposed to
// pipeline errors.
var ErrInvalidRequest = errors.New("invalid request")

// Engine is the search orchestrator.
type Engine struct {
	country        CountryDetector
	overpass       *overpass.Client
	extractor      *overpass.Extractor
	wikipedia      ZoneSource
	wikidata       BBoxSource
	municipalities MunicipalityDiscoverer
	marine         MarineExplorer
	enricher       Enricher
	dedup          *poi.Deduplicator
	results        *cache.ResultCache
	log            *slog.Logger

	concurrency int
}

// New wires an Engine. Optional collaborators may be nil.
func New(cfg *config.SearchConfig, country CountryDetector, oc *overpass.Client, ex *overpass.Extractor,
	wp ZoneSource, wd BBoxSource, md MunicipalityDiscoverer, me MarineExplorer, en Enricher,
	results *cache.ResultCache, log *slog.Logger) *Engine {

	concurrency := cfg.ProviderConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		country:        country,
		overpass:       oc,
		extractor:      ex,
		wikipedia:      wp,
		wikidata:       wd,
		municipalities: md,
		marine:         me,
		enricher:       en,
		dedup:          poi.NewDeduplicator(),
		results:        results,
		log:            log,
		concurrency:    concurrency,
	}
}

// Search runs the full pipeline for a request. Provider failures
// degrade the result to partial; only an invalid request errors.
func (e *Engine) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error) {
	polygon := geo.Polygon(req.Polygon)
	if err := polygon.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if req.ZoneName == "" {
		return nil, fmt.Errorf("%w: zone_name is required", ErrInvalidRequest)
	}
	switch req.Mode {
	case "", model.ModeStandard, model.ModeEnhanced:
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}

	searchID := uuid.NewString()
	log := e.log.With("search_id", searchID, "zone", req.ZoneName)
	started := time.Now()

	if e.results != nil {
		if cached, ok := e.results.Get(req); ok {
			log.Info("search served from cache", "pois", len(cached.POIs))
			return cached, nil
		}
	}

	var country model.Country
	if e.country != nil {
		country = e.country.DetectCountry(ctx, polygon)
	}
	lang := nominatim.WikiLanguage(country)
	bbox := geo.BoundsOf(polygon)

	var (
		mu     sync.Mutex
		pois   []model.POI
		munis  []model.Municipality
		failed []string
	)

	if !req.MarineOnly {
		tasks := []struct {
			name string
			run  func(ctx context.Context) ([]model.POI, error)
		}{
			{"overpass", func(ctx context.Context) ([]model.POI, error) {
				if e.overpass == nil {
					return nil, nil
				}
				resp, err := e.overpass.Execute(ctx, overpass.TouristQuery(bbox))
				if err != nil {
					return nil, err
				}
				return e.extractor.POIs(resp, model.TypeLand), nil
			}},
			{"wikipedia", func(ctx context.Context) ([]model.POI, error) {
				if e.wikipedia == nil {
					return nil, nil
				}
				return e.wikipedia.SearchPOIs(ctx, req.ZoneName, bbox, lang)
			}},
			{"wikidata", func(ctx context.Context) ([]model.POI, error) {
				if e.wikidata == nil {
					return nil, nil
				}
				return e.wikidata.SearchPOIs(ctx, bbox, lang)
			}},
		}

		sem := make(chan struct{}, e.concurrency)
		var wg sync.WaitGroup
		for _, task := range tasks {
			wg.Add(1)
			sem <- struct{}{}
			go func(name string, run func(ctx context.Context) ([]model.POI, error)) {
				defer wg.Done()
				defer func() { <-sem }()

				res, err := run(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					log.Warn("provider failed", "provider", name, "error", err)
					failed = append(failed, name)
					return
				}
				pois = append(pois, res...)
			}(task.name, task.run)
		}

		if e.municipalities != nil {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				res := e.municipalities.Discover(ctx, req.ZoneName, polygon)
				mu.Lock()
				munis = res
				mu.Unlock()
			}()
		}
		wg.Wait()

		pois = filterInside(pois, polygon)
		pois = e.dedup.Deduplicate(pois)
	}

	var analysis model.MarineAnalysis
	if e.marine != nil && (req.MarineOnly || req.ExtendMarine) {
		names := make([]string, 0, len(munis))
		for _, m := range munis {
			names = append(names, m.Name)
		}
		res := e.marine.Explore(ctx, marine.Request{
			ZoneName:       req.ZoneName,
			Polygon:        polygon,
			Municipalities: names,
			Country:        country,
			Lang:           lang,
			ExtendMarine:   req.ExtendMarine,
			Mode:           req.Mode,
		})
		pois = append(pois, res.POIs...)
		analysis = res.Analysis
		failed = append(failed, res.FailedSources...)
	}

	// Enhanced mode does its semantic work during extraction; the
	// batch enrichment pass would only repeat it.
	if req.EnableAI && req.Mode != model.ModeEnhanced && e.enricher != nil {
		pois = e.enricher.EnrichPOIs(ctx, req.ZoneName, pois)
	}

	normalizeTypes(pois)
	orderPOIs(pois)

	result := &model.SearchResult{
		ZoneName:       req.ZoneName,
		Country:        country,
		Municipalities: munis,
		POIs:           pois,
		Statistics:     buildStatistics(pois, munis, failed),
		MarineAnalysis: analysis,
		CachedAt:       time.Now().UTC(),
	}

	if e.results != nil {
		if err := e.results.Put(req, result); err != nil {
			log.Warn("failed to cache result", "error", err)
		}
	}

	log.Info("search finished", "pois", len(pois), "municipalities", len(munis),
		"partial", result.Statistics.Partial, "duration", time.Since(started).Round(time.Millisecond))
	return result, nil
}

// filterInside drops POIs outside the request polygon. Providers query
// by bounding box, which overshoots the zone at its corners.
func filterInside(pois []model.POI, polygon geo.Polygon) []model.POI {
	out := pois[:0]
	for _, p := range pois {
		if polygon.Contains(geo.Point{Lat: p.Lat, Lng: p.Lng}) {
			out = append(out, p)
		}
	}
	return out
}

// normalizeTypes enforces the marine type contract on every POI.
func normalizeTypes(pois []model.POI) {
	for i := range pois {
		if pois[i].MarineType != "" || pois[i].Type == model.MarineWreck {
			pois[i].Type = model.TypeMarine
		} else if pois[i].Type == "" {
			pois[i].Type = model.TypeLand
		}
	}
}

// orderPOIs sorts land POIs before marine, each group by relevance.
func orderPOIs(pois []model.POI) {
	sort.SliceStable(pois, func(i, j int) bool {
		mi, mj := pois[i].IsMarine(), pois[j].IsMarine()
		if mi != mj {
			return !mi
		}
		return pois[i].RelevanceScore > pois[j].RelevanceScore
	})
}

func buildStatistics(pois []model.POI, munis []model.Municipality, failed []string) model.Statistics {
	stats := model.Statistics{
		TotalPOIs:           len(pois),
		TotalMunicipalities: len(munis),
		SourcesUsed:         []string{},
		FailedSources:       failed,
		Partial:             len(failed) > 0,
	}

	sources := make(map[string]bool)
	for _, p := range pois {
		if p.IsMarine() {
			stats.MarinePOIs++
		} else {
			stats.LandPOIs++
		}
		sources[p.Source] = true
	}
	for s := range sources {
		stats.SourcesUsed = append(stats.SourcesUsed, s)
	}
	sort.Strings(stats.SourcesUsed)
	return stats
}
