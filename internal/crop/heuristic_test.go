package crop

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/agrisense/agrisense/internal/weather"
)

// TestRecommendDryScenario verifies the drought case from the field:
// warm and nearly rainless weather must keep high-water crops out and
// surface the drought staples.
func TestRecommendDryScenario(t *testing.T) {
	summary := weather.Summary{
		AverageTemperature: 26,
		TotalRainfall:      15,
		Season:             weather.SeasonDry,
	}

	recs := Recommend(summary, "Kisumu")
	require.NotEmpty(t, recs)

	names := make(map[string]bool)
	for _, rec := range recs {
		names[rec.Crop.Name] = true
		require.NotEqual(t, WaterHigh, rec.Crop.WaterRequirement,
			"high-water crop %s recommended in drought",
			rec.Crop.Name)
	}

	droughtStaples := []string{"Cassava", "Millet", "Sorghum"}
	found := false
	for _, name := range droughtStaples {
		if names[name] {
			found = true
			break
		}
	}
	require.True(t, found, "expected at least one of %v, got %v",
		droughtStaples, names)
}

// TestRecommendWetScenario verifies that heavy rain excludes
// drought-adapted crops.
func TestRecommendWetScenario(t *testing.T) {
	summary := weather.Summary{
		AverageTemperature: 27,
		TotalRainfall:      90,
		Season:             weather.SeasonWet,
	}

	recs := Recommend(summary, "Mombasa")
	require.NotEmpty(t, recs)

	for _, rec := range recs {
		require.NotEqual(t, WaterLow, rec.Crop.WaterRequirement,
			"low-water crop %s recommended in heavy rain",
			rec.Crop.Name)
	}
}

// TestRecommendLowRainWarning verifies the irrigation warning on
// non-drought crops under low rainfall.
func TestRecommendLowRainWarning(t *testing.T) {
	summary := weather.Summary{
		AverageTemperature: 24,
		TotalRainfall:      18,
	}

	recs := Recommend(summary, "Dodoma")
	for _, rec := range recs {
		if rec.Crop.WaterRequirement == WaterLow {
			continue
		}
		require.NotEmpty(t, rec.Warnings,
			"%s should carry an irrigation warning",
			rec.Crop.Name)
	}
}

// TestRecommendOrdering verifies best-first ordering and the result
// bound.
func TestRecommendOrdering(t *testing.T) {
	summary := weather.Summary{
		AverageTemperature: 25,
		TotalRainfall:      50,
	}

	recs := Recommend(summary, "Arusha")
	require.LessOrEqual(t, len(recs), 6)

	for i := 1; i < len(recs); i++ {
		require.GreaterOrEqual(t,
			recs[i-1].SuitabilityScore,
			recs[i].SuitabilityScore)
	}
}

// TestRecommendTotal is the totality property: any summary yields 0-6
// recommendations with scores in [0,100], interpolated reasoning, and
// no panic.
func TestRecommendTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		summary := weather.Summary{
			AverageTemperature: rapid.Float64Range(
				-60, 60).Draw(t, "avgTemp"),
			TotalRainfall: rapid.Float64Range(
				0, 1000).Draw(t, "rainfall"),
			WindSpeed: rapid.Float64Range(
				0, 200).Draw(t, "wind"),
		}

		recs := Recommend(summary, rapid.String().Draw(t, "location"))

		if len(recs) > 6 {
			t.Fatalf("got %d recommendations, want <= 6",
				len(recs))
		}
		for _, rec := range recs {
			if rec.SuitabilityScore < 0 ||
				rec.SuitabilityScore > 100 {

				t.Fatalf("score %d out of range",
					rec.SuitabilityScore)
			}
			if rec.Reasoning == "" {
				t.Fatalf("empty reasoning for %s",
					rec.Crop.Name)
			}
		}
	})
}

// TestIdentityKey verifies id-preferred, name-fallback identity.
func TestIdentityKey(t *testing.T) {
	require.Equal(t, "crop-7",
		(Crop{ID: "crop-7", Name: "Maize"}).IdentityKey())
	require.Equal(t, "maize", (Crop{Name: "Maize"}).IdentityKey())
	require.Equal(t, "maize", (Crop{Name: "MAIZE"}).IdentityKey())
}

// TestLookupReference verifies case-insensitive catalogue lookup.
func TestLookupReference(t *testing.T) {
	c, ok := LookupReference("cassava")
	require.True(t, ok)
	require.Equal(t, "Cassava", c.Name)

	_, ok = LookupReference("durian")
	require.False(t, ok)
}
