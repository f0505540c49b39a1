// Package marine runs the marine sub-pipeline: coastal detection,
// dive site collection from every source, underwater validation,
// depth analysis, and route suggestion.
package marine

import (
	"periplo/pkg/geo"
	"periplo/pkg/model"
	"periplo/pkg/poi"
)

// knownSite is a curated dive site. The engine grew up in the Ligurian
// gulfs, so that is where the local knowledge lives.
type knownSite struct {
	name        string
	marineType  string
	description string
	lat, lng    float64
	depthM      float64
	hasDepth    bool
}

var localSites = []knownSite{
	{
		name:        "Relitto Mohawk Deer",
		marineType:  model.MarineWreck,
		description: "Canadian cargo ship sunk in 1967 off Punta Bianca, resting on a sandy bottom. One of the classic wreck dives of the gulf.",
		lat:         44.0342, lng: 9.8956, depthM: 32, hasDepth: true,
	},
	{
		name:        "Relitto Washington",
		marineType:  model.MarineWreck,
		description: "Steamer wreck near Portofino, broken in two sections on the seabed.",
		lat:         44.328, lng: 9.217, depthM: 28, hasDepth: true,
	},
	{
		name:        "Relitto Ischia",
		marineType:  model.MarineWreck,
		description: "Cargo wreck in the Portofino marine protected area, home to conger eels and lobsters.",
		lat:         44.315, lng: 9.235, depthM: 35, hasDepth: true,
	},
	{
		name:        "Faro di Tino",
		marineType:  model.MarineLighthouse,
		description: "Lighthouse on Tino island marking the southern entrance of the gulf. The surrounding walls drop steeply underwater.",
		lat:         44.0255, lng: 9.8505,
	},
	{
		name:        "Secca del Ferale",
		marineType:  model.MarineReef,
		description: "Rocky shoal off the Cinque Terre coast, rich in gorgonians.",
		lat:         44.1245, lng: 9.6834, depthM: 18, hasDepth: true,
	},
	{
		name:        "Relitto KT UJ2216",
		marineType:  model.MarineWreck,
		description: "German escort vessel sunk in 1944, a technical dive outside the Portofino headland.",
		lat:         44.320, lng: 9.215, depthM: 42, hasDepth: true,
	},
	{
		name:        "Relitto Jörn",
		marineType:  model.MarineWreck,
		description: "Cargo ship wreck in the Portofino area, partly collapsed.",
		lat:         44.318, lng: 9.220, depthM: 38, hasDepth: true,
	},
}

// LocalSites returns the curated dive sites that fall inside the polygon.
func LocalSites(polygon geo.Polygon) []model.POI {
	var out []model.POI
	for _, s := range localSites {
		if !polygon.Contains(geo.Point{Lat: s.lat, Lng: s.lng}) {
			continue
		}
		p := model.POI{
			Name:        s.name,
			Description: s.description,
			Lat:         s.lat,
			Lng:         s.lng,
			Source:      model.SourceLocal,
			Type:        model.TypeMarine,
			MarineType:  s.marineType,
			DepthM:      s.depthM,
			DepthKnown:  s.hasDepth,
		}
		p.RelevanceScore = poi.Score(&p)
		out = append(out, p)
	}
	return out
}
