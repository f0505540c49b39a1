package websearch

import (
	"sort"
	"strings"
)

// fractionPrefixes identify hamlet-style names that web search engines
// do not know. Queries run against main municipalities only.
var fractionPrefixes = []string{
	"di ", "del ", "della ", "dell'", "in ", "sul ", "sulla ", "sulle ",
	"San ", "Santa ", "Santo ", "Sant'", "S. ",
	"La ", "Lo ", "Il ", "Le ", "Gli ",
	"Costa ", "Punta ", "Baia ", "Golfo ", "Porto ", "Cala ",
	"Borgo ", "Villaggio ", "Località ", "Loc. ", "Frazione ", "Fraz. ",
}

// coastalHints bump a municipality in the query ordering: coastal towns
// are where the diving centers are.
var coastalHints = []string{
	"mare", "marina", "maritt", "porto", "port", "baia", "spiagg",
	"riviera", "golfo", "isola", "nautica", "pesc",
}

// BuildQueries returns up to three search queries for a municipality,
// localized when the country is known.
func BuildQueries(municipality, countryName string) []string {
	var queries []string

	if countryName != "" {
		queries = append(queries,
			"diving center "+municipality+" "+countryName+" relitti",
			"wreck diving "+municipality+" "+countryName,
		)

		lower := strings.ToLower(countryName)
		switch {
		case strings.Contains(lower, "italy") || strings.Contains(lower, "italia"):
			queries = append(queries, "centro immersione "+municipality+" relitti")
		case strings.Contains(lower, "france"):
			queries = append(queries, "centre de plongée "+municipality+" épaves")
		case strings.Contains(lower, "spain") || strings.Contains(lower, "españa"):
			queries = append(queries, "centro de buceo "+municipality+" pecios")
		default:
			queries = append(queries, "immersioni relitti "+municipality+" "+countryName)
		}
	} else {
		queries = append(queries,
			"diving center "+municipality+" relitti",
			"immersioni relitti "+municipality,
			"wreck diving "+municipality,
		)
	}

	if len(queries) > 3 {
		queries = queries[:3]
	}
	return queries
}

// ZoneQueries returns fallback queries when no municipalities are known.
func ZoneQueries(zoneName, countryName string) []string {
	if countryName != "" {
		queries := []string{
			zoneName + " wreck " + countryName,
			zoneName + " shipwreck " + countryName,
			zoneName + " diving wreck " + countryName,
		}
		lower := strings.ToLower(countryName)
		if strings.Contains(lower, "italy") || strings.Contains(lower, "italia") {
			queries = append(queries, "relitti "+zoneName)
		}
		return queries
	}
	return []string{
		zoneName + " wreck",
		zoneName + " shipwreck",
		zoneName + " diving wreck",
	}
}

// FilterMainMunicipalities keeps the municipalities worth searching:
// fractions, overly long compounds, and abbreviations are dropped, the
// rest ranked by coastal hints and zone affinity, capped at six.
func FilterMainMunicipalities(municipalities []string, zoneName string) []string {
	if len(municipalities) == 0 {
		return nil
	}

	var zoneTokens []string
	for _, token := range strings.Fields(strings.ToLower(zoneName)) {
		if len(token) > 3 {
			zoneTokens = append(zoneTokens, token)
		}
	}

	type scored struct {
		name  string
		score int
	}
	var candidates []scored

	for _, m := range municipalities {
		name := strings.TrimSpace(m)
		if len(name) < 3 || len(strings.Fields(name)) > 3 {
			continue
		}
		if isFraction(name) {
			continue
		}

		lower := strings.ToLower(name)
		score := 0
		for _, hint := range coastalHints {
			if strings.Contains(lower, hint) {
				score += 2
			}
		}
		for _, token := range zoneTokens {
			if strings.Contains(lower, token) {
				score++
				break
			}
		}
		if len(lower) <= 8 {
			score++
		}
		candidates = append(candidates, scored{name: name, score: score})
	}

	if len(candidates) == 0 {
		// No coastal candidate survived; search the first few as given.
		if len(municipalities) > 6 {
			return municipalities[:6]
		}
		return municipalities
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	out := make([]string, 0, 6)
	for _, c := range candidates {
		out = append(out, c.name)
		if len(out) == 6 {
			break
		}
	}
	return out
}

func isFraction(name string) bool {
	for _, prefix := range fractionPrefixes {
		if strings.Contains(name, prefix) {
			return true
		}
	}
	return false
}
