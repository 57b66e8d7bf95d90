package crop

import (
	"fmt"
	"sort"

	"github.com/agrisense/agrisense/internal/weather"
)

// maxRecommendations bounds the heuristic output.
const maxRecommendations = 6

// Recommend scores the reference table against a weather summary and
// returns up to six crops, best first. It is the deterministic fallback
// used when the generation backend is unavailable or returns garbage,
// and also powers the instant "quick" display path.
//
// The function is total: any Summary value yields a (possibly empty)
// result and never an error.
func Recommend(summary weather.Summary, location string) []Recommendation {
	candidates := make([]refEntry, 0, len(referenceTable))
	for _, entry := range referenceTable {
		if !viable(entry.crop, summary) {
			continue
		}
		candidates = append(candidates, entry)
	}

	// Static suitability ordering, name as tie-break so the output is
	// stable across runs.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].baseScore != candidates[j].baseScore {
			return candidates[i].baseScore > candidates[j].baseScore
		}
		return candidates[i].crop.Name < candidates[j].crop.Name
	})

	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	recs := make([]Recommendation, len(candidates))
	for i, entry := range candidates {
		recs[i] = Recommendation{
			Crop:             entry.crop,
			SuitabilityScore: clampScore(entry.baseScore),
			Reasoning: fmt.Sprintf(
				"%s suits the expected %.1f°C average and "+
					"%.1fmm rainfall near %s.",
				entry.crop.Name, summary.AverageTemperature,
				summary.TotalRainfall, location,
			),
			Benefits: entry.benefits,
			Warnings: warningsFor(entry.crop, summary),
		}
	}

	return recs
}

// viable applies the hard filters: temperature range, and the two
// rainfall-vs-water-requirement exclusions.
func viable(c Crop, summary weather.Summary) bool {
	avgTemp := summary.AverageTemperature
	if avgTemp < c.TempMin || avgTemp > c.TempMax {
		return false
	}

	// Heavy rain drowns drought-adapted crops.
	if summary.TotalRainfall > 70 && c.WaterRequirement == WaterLow {
		return false
	}

	// Thirsty crops fail without enough rain.
	if summary.TotalRainfall < 40 && c.WaterRequirement == WaterHigh {
		return false
	}

	return true
}

// warningsFor annotates crops that survived the filters but still carry
// weather risk worth flagging.
func warningsFor(c Crop, summary weather.Summary) []string {
	var warnings []string

	if summary.TotalRainfall < 20 && c.WaterRequirement != WaterLow {
		warnings = append(warnings, fmt.Sprintf(
			"Only %.1fmm of rain is forecast; plan "+
				"supplemental irrigation for %s.",
			summary.TotalRainfall, c.Name,
		))
	}

	if summary.AverageTemperature > 28 && c.TempMax <= 30 {
		warnings = append(warnings,
			"Temperatures near the crop's upper limit; "+
				"provide shade or mulch.",
		)
	}

	return warnings
}

// clampScore bounds a score to the 0-100 contract.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
