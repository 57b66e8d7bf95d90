package recommend

import (
	"fmt"

	"github.com/agrisense/agrisense/internal/weather"
)

// promptTemplate is the generation prompt. It embeds the numeric
// weather summary and the explicit crop-selection rule table so the
// backend does not have to infer the banding rules, and pins the
// response shape so the parser has a fighting chance.
const promptTemplate = `You are an agronomy advisor. Recommend crops to plant near %s.

Forecast summary for the coming week:
- Average temperature: %.1f°C
- Total rainfall: %.1fmm
- Average wind speed: %.1f km/h
- Average UV index: %.1f
- Conditions: %s
- Season class: %s

Apply these selection rules strictly:
- Rainfall above 70mm: recommend high-water crops only.
- Rainfall 40-70mm: recommend medium-water crops.
- Rainfall 20-40mm: recommend drought-tolerant crops.
- Rainfall below 20mm: recommend drought-resistant crops only.
- Average temperature above 28°C: exclude cool-season crops.
- Average temperature below 18°C: exclude heat-loving crops.

Respond with a single JSON object and nothing else:
{
  "weatherSummary": "one sentence for a farmer",
  "recommendations": [
    {
      "crop": {
        "name": "...",
        "scientificName": "...",
        "category": "...",
        "waterRequirement": "Low|Moderate|High",
        "tempMin": 0,
        "tempMax": 0,
        "soilType": "...",
        "daysToMaturity": 0,
        "plantingInstructions": ["..."],
        "careInstructions": ["..."]
      },
      "suitabilityScore": 0,
      "reasoning": "...",
      "benefits": ["..."],
      "warnings": ["..."]
    }
  ],
  "generalAdvice": "..."
}
Return at most 6 recommendations, best first, with suitabilityScore between 0 and 100.`

// BuildPrompt renders the generation prompt for a location and its
// weather summary. The output is deterministic for a given input, which
// keeps it testable against a golden file.
func BuildPrompt(location string, summary weather.Summary) string {
	return fmt.Sprintf(
		promptTemplate,
		location,
		summary.AverageTemperature,
		summary.TotalRainfall,
		summary.WindSpeed,
		summary.UVIndex,
		summary.Conditions,
		summary.Season,
	)
}
