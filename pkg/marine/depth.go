package marine

import "periplo/pkg/model"

// Depth bucket boundaries in meters.
const (
	surfaceMax      = 5
	shallowMax      = 18
	recreationalMax = 40
)

// Accessibility grades how reachable a site is for divers.
func Accessibility(p *model.POI) *model.Accessibility {
	if !p.DepthKnown {
		if p.MarineType == model.MarineLighthouse {
			return &model.Accessibility{
				Level:        "easy",
				Difficulty:   "surface visit by boat",
				Requirements: "None",
			}
		}
		return nil
	}

	a := &model.Accessibility{DepthMeters: p.DepthM}
	switch {
	case p.DepthM <= surfaceMax:
		a.Level = "easy"
		a.Difficulty = "suitable for snorkelers"
		a.Requirements = "Snorkeling"
	case p.DepthM <= shallowMax:
		a.Level = "moderate"
		a.Difficulty = "entry-level dive"
		a.Requirements = "Open Water Diver"
	case p.DepthM <= 30:
		a.Level = "advanced"
		a.Difficulty = "deep recreational dive"
		a.Requirements = "Advanced Open Water"
	default:
		a.Level = "expert"
		a.Difficulty = "deep or technical dive"
		a.Requirements = "Deep diving specialty"
	}
	return a
}

// AnalyzeDepth buckets the marine POIs by depth and attaches safety
// notes for the buckets that are present.
func AnalyzeDepth(pois []model.POI) *model.DepthAnalysis {
	if len(pois) == 0 {
		return nil
	}

	buckets := map[string]*model.DepthBucket{
		"surface":      {Label: "surface (0-5 m)"},
		"shallow":      {Label: "shallow (5-18 m)"},
		"recreational": {Label: "recreational (18-40 m)"},
		"technical":    {Label: "technical (40+ m)"},
		"unknown":      {Label: "unknown depth"},
	}

	for _, p := range pois {
		key := "unknown"
		if p.DepthKnown {
			switch {
			case p.DepthM <= surfaceMax:
				key = "surface"
			case p.DepthM <= shallowMax:
				key = "shallow"
			case p.DepthM <= recreationalMax:
				key = "recreational"
			default:
				key = "technical"
			}
		}
		buckets[key].Count++
		buckets[key].Names = append(buckets[key].Names, p.Name)
	}

	// Every range appears even when empty, so clients can chart the
	// full profile without special-casing missing buckets.
	analysis := &model.DepthAnalysis{}
	for _, key := range []string{"surface", "shallow", "recreational", "technical", "unknown"} {
		analysis.Buckets = append(analysis.Buckets, *buckets[key])
	}

	if buckets["technical"].Count > 0 {
		analysis.SafetyNotes = append(analysis.SafetyNotes,
			"Sites below 40 m require technical training and appropriate gas planning.")
	}
	if buckets["recreational"].Count > 0 {
		analysis.SafetyNotes = append(analysis.SafetyNotes,
			"Deep recreational sites require an advanced certification and a dive guide familiar with the area.")
	}
	if buckets["unknown"].Count > 0 {
		analysis.SafetyNotes = append(analysis.SafetyNotes,
			"Verify depth and conditions with a local diving center before planning dives on unverified sites.")
	}
	return analysis
}
