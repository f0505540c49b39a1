// Package model defines the shared data types for the POI aggregation engine.
package model

import "time"

// POI source identifiers, as reported in results and used for dedup priority.
const (
	SourceOSM       = "OSM"
	SourceWikipedia = "Wikipedia"
	SourceWikidata  = "Wikidata"
	SourceDBpedia   = "DBpedia"
	SourceWebSearch = "Web Search"
	SourceGoogleCSE = "Google CSE"
	SourceLocal     = "Local Knowledge"
)

// POI types.
const (
	TypeLand   = "land"
	TypeMarine = "marine"
)

// Search modes. Enhanced mode replaces pattern extraction of web pages
// with LLM extraction and skips the batch enrichment pass.
const (
	ModeStandard = "standard"
	ModeEnhanced = "enhanced"
)

// Marine subtypes.
const (
	MarineWreck       = "wreck"
	MarineReef        = "reef"
	MarineObstruction = "obstruction"
	MarineDivingSite  = "diving_site"
	MarineCave        = "cave"
	MarineLighthouse  = "lighthouse"
	MarineGeneric     = "marine_poi"
)

// POI is a single point of interest, land or marine.
type POI struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Source      string  `json:"source"`
	Type        string  `json:"type"`

	// Marine fields. DepthM is 0 when unknown; DepthKnown disambiguates.
	MarineType    string         `json:"marine_type,omitempty"`
	DepthM        float64        `json:"depth,omitempty"`
	DepthKnown    bool           `json:"-"`
	Accessibility *Accessibility `json:"accessibility,omitempty"`

	// Provenance.
	URL            string  `json:"url,omitempty"`
	WikidataID     string  `json:"wikidata_id,omitempty"`
	DBpediaURI     string  `json:"dbpedia_uri,omitempty"`
	OSMID          int64   `json:"osm_id,omitempty"`
	Lang           string  `json:"lang,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Accessibility describes how reachable a marine POI is for divers.
type Accessibility struct {
	Level        string  `json:"level"`
	DepthMeters  float64 `json:"depth_meters,omitempty"`
	Difficulty   string  `json:"difficulty"`
	Requirements string  `json:"requirements"`
}

// Municipality is a settlement discovered inside the zone, with its
// attached hamlets and subdivisions.
type Municipality struct {
	Name              string   `json:"name"`
	Lat               float64  `json:"lat,omitempty"`
	Lng               float64  `json:"lng,omitempty"`
	PlaceType         string   `json:"place_type,omitempty"`
	AdminLevel        string   `json:"admin_level,omitempty"`
	Source            string   `json:"source,omitempty"`
	Subdivisions      []string `json:"subdivisions"`
	POICount          int      `json:"poi_count"`
	TourismLevel      string   `json:"tourism_level,omitempty"`
	GeographicContext string   `json:"geographic_context,omitempty"`
}

// SearchRequest is the input for a zone search.
type SearchRequest struct {
	ZoneName     string      `json:"zone_name"`
	Polygon      [][]float64 `json:"polygon"` // [lat, lng] vertices
	ExtendMarine bool        `json:"extend_marine"`
	MarineOnly   bool        `json:"marine_only"`
	EnableAI     bool        `json:"enable_ai"`
	Mode         string      `json:"mode,omitempty"` // "standard" or "enhanced"
}

// Country holds detected country metadata for a zone.
type Country struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Statistics summarizes a search result.
type Statistics struct {
	TotalPOIs           int      `json:"total_pois"`
	LandPOIs            int      `json:"land_pois"`
	MarinePOIs          int      `json:"marine_pois"`
	TotalMunicipalities int      `json:"total_municipalities"`
	SourcesUsed         []string `json:"sources_used"`
	Partial             bool     `json:"partial,omitempty"`
	FailedSources       []string `json:"failed_sources,omitempty"`
}

// RouteWaypoint is a stop on a suggested marine route.
type RouteWaypoint struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	MarineType string  `json:"marine_type"`
	DepthM     float64 `json:"depth,omitempty"`
}

// MarineRoute is a suggested itinerary over marine POIs.
type MarineRoute struct {
	Waypoints       []RouteWaypoint `json:"waypoints"`
	DurationMinutes int             `json:"duration_minutes"`
}

// DepthBucket aggregates marine POIs by depth range.
type DepthBucket struct {
	Label string   `json:"label"`
	Count int      `json:"count"`
	Names []string `json:"names,omitempty"`
}

// DepthAnalysis summarizes diveability of the marine POIs in a result.
type DepthAnalysis struct {
	Buckets     []DepthBucket `json:"buckets"`
	SafetyNotes []string      `json:"safety_notes,omitempty"`
}

// MarineAnalysis carries the marine sub-pipeline outputs.
type MarineAnalysis struct {
	IsCoastal     bool           `json:"is_coastal"`
	MarineRoute   *MarineRoute   `json:"marine_route,omitempty"`
	DepthAnalysis *DepthAnalysis `json:"depth_analysis,omitempty"`
}

// SearchResult is the assembled output for a zone search.
type SearchResult struct {
	ZoneName       string         `json:"zone_name"`
	Country        Country        `json:"country"`
	Municipalities []Municipality `json:"municipalities"`
	POIs           []POI          `json:"pois"`
	Statistics     Statistics     `json:"statistics"`
	MarineAnalysis MarineAnalysis `json:"marine_analysis"`
	CachedAt       time.Time      `json:"cached_at,omitempty"`
}

// SourcePriority returns the dedup priority for a source. Higher wins.
func SourcePriority(source string) int {
	switch source {
	case SourceWikipedia:
		return 3
	case SourceWikidata:
		return 2
	case SourceOSM:
		return 1
	default:
		return 0
	}
}

// IsMarine reports whether the POI belongs to the marine result set.
func (p *POI) IsMarine() bool {
	return p.Type == TypeMarine || p.Type == MarineWreck || p.MarineType != ""
}
