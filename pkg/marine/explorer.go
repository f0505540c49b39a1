package marine

import (
	"context"
	"log/slog"

	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/overpass"
	"periplo/pkg/poi"
)

// WaterChecker answers whether a point lies on water.
type WaterChecker interface {
	IsInWater(ctx context.Context, pt geo.Point) bool
}

// ZoneMarineSource searches marine POIs with zone-derived terms.
type ZoneMarineSource interface {
	SearchMarinePOIs(ctx context.Context, zoneName string, bbox geo.BoundingBox, lang string) ([]model.POI, error)
}

// BBoxMarineSource searches marine POIs by bounding box alone.
type BBoxMarineSource interface {
	SearchMarinePOIs(ctx context.Context, bbox geo.BoundingBox, lang string) ([]model.POI, error)
}

// WreckSearcher finds wrecks on the open web.
type WreckSearcher interface {
	SearchWrecks(ctx context.Context, zoneName string, municipalities []string, polygon geo.Polygon, country model.Country, mode string) []model.POI
}

// Request carries the inputs of one marine exploration.
type Request struct {
	ZoneName       string
	Polygon        geo.Polygon
	Municipalities []string
	Country        model.Country
	Lang           string
	ExtendMarine   bool
	Mode           string
}

// Result is the outcome of the marine pipeline.
type Result struct {
	POIs          []model.POI
	Analysis      model.MarineAnalysis
	FailedSources []string
}

// Explorer orchestrates the marine sub-pipeline.
type Explorer struct {
	water     WaterChecker
	overpass  *overpass.Client
	extractor *overpass.Extractor
	wikipedia ZoneMarineSource
	wikidata  BBoxMarineSource
	dbpedia   BBoxMarineSource
	websearch WreckSearcher
	dedup     *poi.Deduplicator
	validator *poi.Validator
	log       *slog.Logger

	extensionKM float64
}

// NewExplorer wires an Explorer. Any source may be nil and is skipped.
func NewExplorer(water WaterChecker, oc *overpass.Client, ex *overpass.Extractor,
	wp ZoneMarineSource, wd, db BBoxMarineSource, ws WreckSearcher,
	extensionKM float64, log *slog.Logger) *Explorer {
	return &Explorer{
		water:       water,
		overpass:    oc,
		extractor:   ex,
		wikipedia:   wp,
		wikidata:    wd,
		dbpedia:     db,
		websearch:   ws,
		dedup:       poi.NewDeduplicator(),
		validator:   poi.NewValidator(),
		log:         log,
		extensionKM: extensionKM,
	}
}

// Explore runs the marine pipeline for a zone. Source failures cost
// their POIs, never the result.
func (e *Explorer) Explore(ctx context.Context, req Request) Result {
	bbox := geo.BoundsOf(req.Polygon)
	if !e.isCoastal(ctx, bbox) {
		e.log.Info("zone is not coastal, skipping marine pipeline", "zone", req.ZoneName)
		return Result{Analysis: model.MarineAnalysis{IsCoastal: false}}
	}

	// The search box may extend seaward beyond the zone, but results
	// are always clipped back to the polygon in validate.
	searchBox := bbox
	if req.ExtendMarine && e.extensionKM > 0 {
		searchBox = bbox.ExtendMarine(e.extensionKM)
		e.log.Debug("marine bbox extended seaward", "km", e.extensionKM)
	}

	var pois []model.POI
	var failed []string

	pois = append(pois, LocalSites(req.Polygon)...)

	if e.overpass != nil {
		resp, err := e.overpass.Execute(ctx, overpass.MarineQuery(searchBox))
		if err != nil {
			e.log.Warn("overpass marine query failed", "error", err)
			failed = append(failed, "overpass")
		} else {
			pois = append(pois, e.extractor.POIs(resp, model.TypeMarine)...)
		}
	}

	pois = append(pois, e.textSources(ctx, req.ZoneName, searchBox, req.Lang, &failed)...)

	if e.websearch != nil {
		pois = append(pois, e.websearch.SearchWrecks(ctx, req.ZoneName, req.Municipalities, req.Polygon, req.Country, req.Mode)...)
	}

	pois = e.validate(ctx, pois, req.Polygon)
	pois = e.dedup.DeduplicateMarine(pois)

	for i := range pois {
		pois[i].Type = model.TypeMarine
		if pois[i].Accessibility == nil {
			pois[i].Accessibility = Accessibility(&pois[i])
		}
	}

	analysis := model.MarineAnalysis{
		IsCoastal:     true,
		DepthAnalysis: AnalyzeDepth(pois),
		MarineRoute:   BuildRoute(pois),
	}

	e.log.Info("marine pipeline finished", "zone", req.ZoneName, "pois", len(pois), "failed_sources", failed)
	return Result{POIs: pois, Analysis: analysis, FailedSources: failed}
}

func (e *Explorer) textSources(ctx context.Context, zoneName string, bbox geo.BoundingBox, lang string, failed *[]string) []model.POI {
	var out []model.POI

	if e.wikipedia != nil {
		res, err := e.wikipedia.SearchMarinePOIs(ctx, zoneName, bbox, lang)
		if err != nil {
			e.log.Warn("wikipedia marine search failed", "error", err)
			*failed = append(*failed, "wikipedia")
		} else {
			out = append(out, res...)
		}
	}
	if e.wikidata != nil {
		res, err := e.wikidata.SearchMarinePOIs(ctx, bbox, lang)
		if err != nil {
			e.log.Warn("wikidata marine search failed", "error", err)
			*failed = append(*failed, "wikidata")
		} else {
			out = append(out, res...)
		}
	}
	if e.dbpedia != nil {
		res, err := e.dbpedia.SearchMarinePOIs(ctx, bbox, lang)
		if err != nil {
			e.log.Warn("dbpedia marine search failed", "error", err)
			*failed = append(*failed, "dbpedia")
		} else {
			out = append(out, res...)
		}
	}
	return out
}

// isCoastal samples the bbox center and edge midpoints; any water hit
// makes the zone coastal.
func (e *Explorer) isCoastal(ctx context.Context, bbox geo.BoundingBox) bool {
	if e.water == nil {
		return true
	}
	center := bbox.Center()
	samples := []geo.Point{
		center,
		{Lat: bbox.South, Lng: center.Lng},
		{Lat: bbox.North, Lng: center.Lng},
		{Lat: center.Lat, Lng: bbox.West},
		{Lat: center.Lat, Lng: bbox.East},
	}
	for _, pt := range samples {
		if e.water.IsInWater(ctx, pt) {
			return true
		}
	}
	return false
}

// validate gates every marine candidate, whatever its source: inside
// the zone polygon, not a surface feature, not a known-fake wreck, and
// for text-derived submerged targets, plausibly on water. The water
// check is lenient: a failed lookup counts as water, so flaky
// geocoding never starves the result.
func (e *Explorer) validate(ctx context.Context, pois []model.POI, polygon geo.Polygon) []model.POI {
	out := pois[:0]
	for _, p := range pois {
		if !polygon.Contains(geo.Point{Lat: p.Lat, Lng: p.Lng}) {
			e.log.Debug("marine candidate dropped, outside zone polygon", "name", p.Name, "source", p.Source)
			continue
		}
		// Lighthouses are surface features by definition but stay in
		// as route waypoints.
		if p.MarineType != model.MarineLighthouse && poi.IsSurfaceFeature(p.Name+" "+p.Description) {
			e.log.Debug("marine candidate dropped, surface feature", "name", p.Name, "source", p.Source)
			continue
		}
		if p.MarineType == model.MarineWreck && !e.validator.CheckKnownWreck(p.Name, p.Lat, p.Lng, true) {
			e.log.Debug("wreck candidate dropped, conflicts with known wreck registry", "name", p.Name)
			continue
		}
		if e.water != nil && needsWaterCheck(&p) && !e.water.IsInWater(ctx, geo.Point{Lat: p.Lat, Lng: p.Lng}) {
			e.log.Debug("marine candidate dropped, coordinates on land", "name", p.Name, "source", p.Source)
			continue
		}
		out = append(out, p)
	}
	return out
}

// needsWaterCheck limits validation to text-derived submerged targets.
// Curated and OSM-tagged sites are already trusted, and lighthouses
// legitimately stand on land.
func needsWaterCheck(p *model.POI) bool {
	switch p.Source {
	case model.SourceLocal, model.SourceOSM:
		return false
	}
	switch p.MarineType {
	case model.MarineWreck, model.MarineReef, model.MarineDivingSite:
		return true
	}
	return false
}
