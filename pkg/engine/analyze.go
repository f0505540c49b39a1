package engine

import (
	"fmt"

	"periplo/pkg/model"
)

// QualityReport summarizes how good a result set is.
type QualityReport struct {
	TotalPOIs          int            `json:"total_pois"`
	AverageScore       float64        `json:"average_score"`
	SourceDistribution map[string]int `json:"source_distribution"`
	DescriptionQuality map[string]int `json:"description_quality"`
	Categories         map[string]int `json:"categories"`
	Recommendations    []string       `json:"recommendations"`
}

// AnalyzeQuality computes quality metrics over a POI set.
func AnalyzeQuality(pois []model.POI) *QualityReport {
	report := &QualityReport{
		TotalPOIs:          len(pois),
		SourceDistribution: map[string]int{},
		DescriptionQuality: map[string]int{},
		Categories:         map[string]int{},
	}
	if len(pois) == 0 {
		report.Recommendations = []string{"No POIs to analyze; widen the zone or check provider availability."}
		return report
	}

	var total float64
	for _, p := range pois {
		total += p.RelevanceScore
		report.SourceDistribution[p.Source]++

		switch n := len(p.Description); {
		case n == 0:
			report.DescriptionQuality["missing"]++
		case n < 50:
			report.DescriptionQuality["short"]++
		default:
			report.DescriptionQuality["good"]++
		}

		category := p.Type
		if p.MarineType != "" {
			category = "marine:" + p.MarineType
		}
		report.Categories[category]++
	}
	report.AverageScore = total / float64(len(pois))

	if missing := report.DescriptionQuality["missing"] + report.DescriptionQuality["short"]; missing > len(pois)/2 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%d of %d POIs have little or no description; enable AI enrichment.", missing, len(pois)))
	}
	if report.AverageScore < 1.5 {
		report.Recommendations = append(report.Recommendations,
			"Low average relevance; results are mostly generic entries.")
	}
	if len(report.SourceDistribution) == 1 {
		report.Recommendations = append(report.Recommendations,
			"All POIs come from a single source; other providers returned nothing for this zone.")
	}
	return report
}
