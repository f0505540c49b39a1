package overpass

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"periplo/pkg/model"
	"periplo/pkg/poi"
)

var nameTags = []string{"name", "name:it", "name:en", "official_name", "short_name"}

// surfaceTagValues mark OSM tag values that indicate at-surface
// features, which must not appear in the marine stream.
var surfaceTagValues = []string{
	"port", "harbour", "harbor", "marina", "lighthouse", "beacon",
	"beach", "bay", "coastline", "coast", "city", "town", "village",
	"island", "islet", "place", "promontory", "peninsula",
}

// surfaceNameKeywords extend the tag check to names and descriptions,
// in the languages the zones commonly use.
var surfaceNameKeywords = []string{
	"porto", "port", "harbour", "harbor", "marina",
	"faro", "lighthouse", "phare",
	"spiaggia", "beach", "plage",
	"baia", "bay", "baie",
	"isola", "island",
	"città", "city", "ville", "town",
	"costa", "coast", "coastline", "côte",
	"capo", "cape",
	"promontory", "promontorio",
	"peninsula", "penisola",
}

// Extractor maps Overpass elements to validated POIs.
type Extractor struct {
	validator *poi.Validator
}

// NewExtractor creates an Extractor.
func NewExtractor(v *poi.Validator) *Extractor {
	return &Extractor{validator: v}
}

// POIs converts a response into POIs of the given kind. Elements
// without coordinates or a usable name are skipped; marine elements
// additionally pass the surface filter and subtype classification.
func (x *Extractor) POIs(resp *Response, kind string) []model.POI {
	var out []model.POI
	for i := range resp.Elements {
		p, ok := x.element(&resp.Elements[i], kind)
		if !ok {
			continue
		}
		if !x.validator.TouristRelevant(&p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (x *Extractor) element(e *Element, kind string) (model.POI, bool) {
	lat, lng, ok := e.Coordinates()
	if !ok {
		return model.POI{}, false
	}

	name := elementName(e.Tags)
	if name == "" {
		return model.POI{}, false
	}

	p := model.POI{
		Name:   name,
		Lat:    lat,
		Lng:    lng,
		Source: model.SourceOSM,
		Type:   kind,
		OSMID:  e.ID,
	}
	p.Description = buildDescription(e.Tags)

	if kind == model.TypeMarine {
		if isSurfaceElement(e.Tags, name, p.Description) {
			slog.Debug("Marine candidate excluded as surface feature", "name", name)
			return model.POI{}, false
		}

		if depth, ok := parseDepth(e.Tags["depth"]); ok {
			p.DepthM = depth
			p.DepthKnown = true
		}

		subtype, ok := classifyMarine(e.Tags, name)
		if !ok {
			slog.Debug("Marine candidate has no underwater classification", "name", name)
			return model.POI{}, false
		}
		p.MarineType = subtype

		if subtype == model.MarineWreck && !x.validator.CheckKnownWreck(name, lat, lng, true) {
			slog.Warn("Known wreck name outside its canonical location, dropped", "name", name)
			return model.POI{}, false
		}
	}

	p.RelevanceScore = poi.Score(&p)
	return p, true
}

// elementName resolves the display name: explicit name tags first,
// then a generated fallback for tagged tourism/historic features.
func elementName(tags map[string]string) string {
	for _, t := range nameTags {
		if v := strings.TrimSpace(tags[t]); v != "" {
			return v
		}
	}
	if v := tags["tourism"]; v != "" {
		return titleCase(v) + " POI"
	}
	if v := tags["historic"]; v != "" {
		return titleCase(v) + " Site"
	}
	return ""
}

var mainTypeLabels = map[string]map[string]string{
	"tourism": {
		"attraction":          "Tourist attraction",
		"museum":              "Museum",
		"castle":              "Castle",
		"monument":            "Monument",
		"viewpoint":           "Viewpoint",
		"archaeological_site": "Archaeological site",
	},
	"historic": {
		"castle":   "Historic castle",
		"fortress": "Fortress",
		"monument": "Historic monument",
		"ruins":    "Historic ruins",
		"palace":   "Historic palace",
	},
	"amenity": {
		"place_of_worship": "Place of worship",
		"library":          "Library",
		"theatre":          "Theatre",
	},
	"natural": {
		"peak":  "Mountain peak",
		"cliff": "Cliff",
		"beach": "Beach",
		"reef":  "Reef",
	},
}

func buildDescription(tags map[string]string) string {
	var parts []string

	for _, category := range []string{"tourism", "historic", "amenity", "natural"} {
		if label, ok := mainTypeLabels[category][tags[category]]; ok {
			parts = append(parts, label)
			break
		}
	}

	if v := tags["description"]; v != "" {
		parts = append(parts, v)
	} else if v := tags["note"]; v != "" {
		parts = append(parts, v)
	}

	if v := tags["start_date"]; v != "" {
		parts = append(parts, "Built in "+v)
	}

	if v := tags["ele"]; v != "" {
		if ele, err := strconv.ParseFloat(v, 64); err == nil {
			parts = append(parts, fmt.Sprintf("Elevation: %gm", ele))
		}
	}

	return strings.Join(parts, ". ")
}

func isSurfaceElement(tags map[string]string, name, description string) bool {
	for _, v := range tags {
		lower := strings.ToLower(v)
		for _, surface := range surfaceTagValues {
			if strings.Contains(lower, surface) {
				return true
			}
		}
	}

	text := strings.ToLower(name + " " + description)
	for _, kw := range surfaceNameKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// classifyMarine assigns the marine subtype. Classification order
// matters: wreck beats reef beats obstruction beats diving site beats
// cave. Elements matching nothing are not underwater POIs.
func classifyMarine(tags map[string]string, name string) (string, bool) {
	lower := strings.ToLower(name)

	isWreck := tags["historic"] == "wreck" ||
		tags["seamark:type"] == "wreck" ||
		tags["seamark:wreck:category"] != "" ||
		tags["wreck"] != "" ||
		tags["site_type"] == "wreck"

	isReef := tags["natural"] == "reef" || tags["natural"] == "shoal" || tags["natural"] == "bank" ||
		strings.Contains(lower, "reef") || strings.Contains(lower, "shoal") ||
		strings.Contains(lower, "secca") || strings.Contains(lower, "scoglio sommerso")

	isObstruction := tags["seamark:type"] == "obstruction" || tags["underwater"] == "yes"

	isDivingSite := tags["sport"] == "diving" || tags["leisure"] == "diving" ||
		tags["scuba_diving"] == "yes" || tags["diving_site"] == "yes" ||
		tags["seamark:type"] == "diving"

	isCave := tags["natural"] == "cave" || tags["submarine_cave"] == "yes"

	switch {
	case isWreck:
		return model.MarineWreck, true
	case isReef:
		return model.MarineReef, true
	case isObstruction:
		return model.MarineObstruction, true
	case isDivingSite:
		return model.MarineDivingSite, true
	case isCave:
		return model.MarineCave, true
	}
	return "", false
}

func parseDepth(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if d < 0 {
		d = -d
	}
	return d, true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Place is a settlement candidate extracted from a municipality query.
type Place struct {
	Name       string
	Lat        float64
	Lng        float64
	PlaceType  string
	AdminLevel string
	Source     string
}

// IsSubdivision reports whether the place is a hamlet-level settlement
// that should attach to a parent municipality.
func (p *Place) IsSubdivision() bool {
	switch p.PlaceType {
	case "hamlet", "suburb", "neighbourhood", "village":
		return true
	}
	return false
}

// IsMainMunicipality reports whether the place anchors its own entry.
func (p *Place) IsMainMunicipality() bool {
	return p.PlaceType == "city" || p.PlaceType == "town" || p.AdminLevel == "8"
}

// Places extracts settlement candidates from a municipality query
// response. Polygon filtering is the caller's concern.
func (x *Extractor) Places(resp *Response) []Place {
	var out []Place
	for i := range resp.Elements {
		e := &resp.Elements[i]
		lat, lng, ok := e.Coordinates()
		if !ok {
			continue
		}
		name := elementName(e.Tags)
		if name == "" {
			continue
		}
		out = append(out, Place{
			Name:       name,
			Lat:        lat,
			Lng:        lng,
			PlaceType:  e.Tags["place"],
			AdminLevel: e.Tags["admin_level"],
			Source:     model.SourceOSM,
		})
	}
	return out
}
