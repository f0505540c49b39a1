// Package municipality discovers the settlements inside a zone and
// organizes them into main municipalities with attached subdivisions.
package municipality

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/nominatim"
	"periplo/pkg/overpass"
)

// fractionMappings attaches well-known hamlets to their administrative
// parent when OSM tags alone cannot tell.
var fractionMappings = map[string]string{
	"fezzano":        "porto venere",
	"le grazie":      "porto venere",
	"tellaro":        "lerici",
	"san terenzo":    "lerici",
	"fiascherino":    "lerici",
	"pugliola":       "lerici",
	"montemarcello":  "ameglia",
	"bocca di magra": "ameglia",
	"fiumaretta":     "ameglia",
	"marola":         "la spezia",
	"cadimare":       "la spezia",
	"campiglia":      "la spezia",
}

// knownTownEstimates carries POI count estimates for towns the engine
// has seen enough of to know better than the default.
var knownTownEstimates = map[string]int{
	"la spezia":    150,
	"porto venere": 80,
	"portovenere":  80,
	"lerici":       90,
	"cinque terre": 120,
	"monterosso":   60,
	"vernazza":     45,
	"corniglia":    30,
	"manarola":     35,
	"riomaggiore":  40,
}

// highTourismTowns and mediumTourismTowns drive tourism levels and the
// matching POI estimate multipliers. Matching is by name fragment, so
// "Monterosso al Mare" still counts as Monterosso.
var highTourismTowns = []string{
	"porto venere", "portovenere", "lerici", "monterosso",
	"vernazza", "corniglia", "manarola", "riomaggiore",
}

var mediumTourismTowns = []string{
	"la spezia", "ameglia", "castelnuovo di magra", "sarzana",
}

// zoneContexts maps a zone-name fragment to the geographic context of
// its municipalities.
var zoneContexts = []struct {
	fragment string
	context  string
}{
	{"cinque terre", "unesco_heritage"},
	{"golfo", "coastal"},
	{"costa", "coastal"},
	{"riviera", "coastal"},
	{"parco", "natural_area"},
	{"riserva", "protected_area"},
}

const (
	defaultPOIEstimate  = 20
	perSubdivisionBonus = 5

	highTourismMultiplier   = 1.5
	mediumTourismMultiplier = 1.2
)

// Discoverer finds and organizes the municipalities of a zone.
type Discoverer struct {
	overpass  *overpass.Client
	extractor *overpass.Extractor
	nominatim *nominatim.Client
	log       *slog.Logger

	// pacing between nominatim queries; shortened in tests
	pace time.Duration
}

// NewDiscoverer wires a Discoverer.
func NewDiscoverer(oc *overpass.Client, ex *overpass.Extractor, nc *nominatim.Client, log *slog.Logger) *Discoverer {
	return &Discoverer{
		overpass:  oc,
		extractor: ex,
		nominatim: nc,
		log:       log,
		pace:      time.Second,
	}
}

// Discover returns the municipalities of the zone, main entries first,
// hamlets joined to their parents. Provider failures degrade to
// whatever the other provider delivered.
func (d *Discoverer) Discover(ctx context.Context, zoneName string, polygon geo.Polygon) []model.Municipality {
	bbox := geo.BoundsOf(polygon)

	places := d.fromOverpass(ctx, bbox, polygon)
	places = append(places, d.fromNominatim(ctx, zoneName, bbox, polygon, places)...)

	munis := organize(places)
	for i := range munis {
		estimate(&munis[i])
		classify(&munis[i], zoneName)
	}

	sort.SliceStable(munis, func(i, j int) bool {
		return munis[i].POICount > munis[j].POICount
	})

	d.log.Info("municipality discovery finished", "zone", zoneName,
		"municipalities", len(munis), "places", len(places))
	return munis
}

func (d *Discoverer) fromOverpass(ctx context.Context, bbox geo.BoundingBox, polygon geo.Polygon) []overpass.Place {
	resp, err := d.overpass.Execute(ctx, overpass.MunicipalityQuery(bbox))
	if err != nil {
		d.log.Warn("overpass municipality query failed", "error", err)
		return nil
	}

	var out []overpass.Place
	for _, place := range d.extractor.Places(resp) {
		if !polygon.Contains(geo.Point{Lat: place.Lat, Lng: place.Lng}) {
			continue
		}
		out = append(out, place)
	}
	return out
}

// fromNominatim supplements the OSM places with forward geocoding on
// zone-derived terms. Queries are paced and failures skipped.
func (d *Discoverer) fromNominatim(ctx context.Context, zoneName string, bbox geo.BoundingBox, polygon geo.Polygon, have []overpass.Place) []overpass.Place {
	seen := make(map[string]bool, len(have))
	for _, p := range have {
		seen[strings.ToLower(p.Name)] = true
	}

	var out []overpass.Place
	for i, term := range searchTerms(zoneName) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(d.pace):
			}
		}

		results, err := d.nominatim.Geocode(ctx, term, bbox, 5)
		if err != nil {
			d.log.Debug("nominatim geocode skipped", "term", term, "error", err)
			continue
		}
		for _, r := range results {
			if !settlementType(r.PlaceType) {
				continue
			}
			if !polygon.Contains(geo.Point{Lat: r.Lat, Lng: r.Lng}) {
				continue
			}
			key := strings.ToLower(r.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, overpass.Place{
				Name:      r.Name,
				Lat:       r.Lat,
				Lng:       r.Lng,
				PlaceType: r.PlaceType,
				Source:    "Nominatim",
			})
		}
	}
	return out
}

// searchTerms derives geocoding queries from the zone name. Coastal
// zone names hint at the settlement vocabulary worth asking for.
func searchTerms(zoneName string) []string {
	terms := []string{zoneName}
	lower := strings.ToLower(zoneName)
	for _, hint := range []string{"golfo", "baia", "costa", "riviera", "gulf", "bay", "coast"} {
		if strings.Contains(lower, hint) {
			terms = append(terms, "comune "+zoneName, "marina "+zoneName)
			break
		}
	}
	return terms
}

func settlementType(placeType string) bool {
	switch placeType {
	case "city", "town", "village", "hamlet", "suburb", "municipality", "administrative":
		return true
	}
	return false
}

// organize joins subdivision places to their parent municipalities.
// The join is deferred until every provider has reported, so a hamlet
// discovered before its parent still attaches correctly.
func organize(places []overpass.Place) []model.Municipality {
	var mains []model.Municipality
	index := make(map[string]int)

	for _, p := range places {
		if p.IsSubdivision() && !p.IsMainMunicipality() {
			continue
		}
		key := strings.ToLower(p.Name)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(mains)
		mains = append(mains, model.Municipality{
			Name:         p.Name,
			Lat:          p.Lat,
			Lng:          p.Lng,
			PlaceType:    p.PlaceType,
			AdminLevel:   p.AdminLevel,
			Source:       p.Source,
			Subdivisions: []string{},
		})
	}

	for _, p := range places {
		if !p.IsSubdivision() || p.IsMainMunicipality() {
			continue
		}
		idx, ok := findParent(p.Name, index)
		if ok {
			mains[idx].Subdivisions = append(mains[idx].Subdivisions, p.Name)
			continue
		}
		// No parent in the zone: the hamlet stands alone.
		key := strings.ToLower(p.Name)
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(mains)
		mains = append(mains, model.Municipality{
			Name:         p.Name,
			Lat:          p.Lat,
			Lng:          p.Lng,
			PlaceType:    p.PlaceType,
			Source:       p.Source,
			Subdivisions: []string{},
		})
	}
	return mains
}

// findParent resolves the parent municipality of a subdivision: the
// curated mapping first, then name containment.
func findParent(name string, index map[string]int) (int, bool) {
	lower := strings.ToLower(name)

	if parent, ok := fractionMappings[lower]; ok {
		if idx, present := index[parent]; present {
			return idx, true
		}
	}
	for parent, idx := range index {
		if strings.Contains(lower, parent) || strings.Contains(parent, lower) {
			return idx, true
		}
	}
	return 0, false
}

func estimate(m *model.Municipality) {
	count := defaultPOIEstimate
	if known, ok := knownTownEstimates[strings.ToLower(m.Name)]; ok {
		count = known
	}
	count += perSubdivisionBonus * len(m.Subdivisions)
	m.POICount = count
}

// classify assigns the tourism level from the curated town sets and
// scales the POI estimate accordingly. The geographic context comes
// from the zone name and applies to every municipality in the zone.
func classify(m *model.Municipality, zoneName string) {
	lower := strings.ToLower(m.Name)

	m.TourismLevel = "low"
	for _, town := range highTourismTowns {
		if strings.Contains(lower, town) {
			m.TourismLevel = "high"
			m.POICount = int(float64(m.POICount) * highTourismMultiplier)
			break
		}
	}
	if m.TourismLevel == "low" {
		for _, town := range mediumTourismTowns {
			if strings.Contains(lower, town) {
				m.TourismLevel = "medium"
				m.POICount = int(float64(m.POICount) * mediumTourismMultiplier)
				break
			}
		}
	}

	m.GeographicContext = "generic"
	zone := strings.ToLower(zoneName)
	for _, zc := range zoneContexts {
		if strings.Contains(zone, zc.fragment) {
			m.GeographicContext = zc.context
			break
		}
	}
}
