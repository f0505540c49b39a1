// Package poi holds the validation, scoring, and deduplication logic
// applied to every candidate before it can enter a search result.
package poi

import (
	"strings"

	"periplo/pkg/model"
)

// Box is an inclusive lat/lng rectangle.
type Box struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
}

// Contains reports whether the point lies inside the box.
func (b Box) Contains(lat, lng float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lng >= b.LngMin && lng <= b.LngMax
}

// Validator filters candidate POIs for tourist relevance and known
// naming collisions.
type Validator struct {
	// knownWrecks maps a lowercase name fragment to the box where the
	// real wreck lies. A candidate matching the fragment outside its
	// box is a naming collision and gets dropped.
	knownWrecks map[string]Box
}

// NewValidator creates a Validator with the built-in collision table.
func NewValidator() *Validator {
	return &Validator{
		knownWrecks: map[string]Box{
			// The cruiser lies in the Black Sea; anything with this
			// name elsewhere is a false hit from web search.
			"moskva":  {LatMin: 44, LatMax: 45, LngMin: 28, LngMax: 35},
			"moscova": {LatMin: 44, LatMax: 45, LngMin: 28, LngMax: 35},
			"moscow":  {LatMin: 44, LatMax: 45, LngMin: 28, LngMax: 35},
			"москва":  {LatMin: 44, LatMax: 45, LngMin: 28, LngMax: 35},
		},
	}
}

// TouristRelevant reports whether the POI is worth returning: marine
// POIs must match a marine keyword, land POIs a tourism keyword.
func (v *Validator) TouristRelevant(p *model.POI) bool {
	text := strings.ToLower(p.Name + " " + p.Description + " " + p.Type)

	if p.IsMarine() {
		return containsAny(text, marineKeywords)
	}
	return containsAny(text, touristKeywords)
}

// CheckKnownWreck reports whether a candidate with the given name may
// keep its coordinates. Candidates matching a known wreck name outside
// its canonical box are collisions; without coordinates the candidate
// cannot be verified and is rejected too.
func (v *Validator) CheckKnownWreck(name string, lat, lng float64, hasCoords bool) bool {
	lower := strings.ToLower(name)
	for fragment, box := range v.knownWrecks {
		if !strings.Contains(lower, fragment) {
			continue
		}
		if !hasCoords {
			return false
		}
		return box.Contains(lat, lng)
	}
	return true
}

// IsSurfaceFeature reports whether the text describes an at-surface
// coastal feature rather than a dive target. Underwater indicators
// override surface ones.
func IsSurfaceFeature(text string) bool {
	lower := strings.ToLower(text)
	if containsAny(lower, underwaterIndicators) {
		return false
	}
	return containsAny(lower, surfaceIndicators)
}

// HasUnderwaterIndicator reports whether the text mentions an
// underwater feature at all. Marine extractors require this before
// accepting a candidate from a text source.
func HasUnderwaterIndicator(text string) bool {
	return containsAny(strings.ToLower(text), underwaterIndicators)
}

// Score computes the relevance score for a POI: base 1.0 scaled by
// source weight, plus description-length and prestige bonuses,
// clamped to [1.0, 5.0].
func Score(p *model.POI) float64 {
	score := 1.0

	switch p.Source {
	case model.SourceWikipedia:
		score *= 1.5
	case model.SourceWikidata:
		score *= 1.2
	}

	desc := strings.ToLower(p.Description)
	if len(desc) > 100 {
		score += 0.8
	} else if len(desc) > 50 {
		score += 0.4
	}

	for _, kw := range prestigeKeywords {
		if strings.Contains(desc, kw) {
			score += 0.3
		}
	}

	if score > 5.0 {
		score = 5.0
	}
	if score < 1.0 {
		score = 1.0
	}
	return score
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
