package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseVerbatim verifies the happy path: clean JSON, no wrapping.
func TestParseVerbatim(t *testing.T) {
	text := `{
		"weatherSummary": "Warm week ahead",
		"recommendations": [
			{
				"crop": {"name": "Maize"},
				"suitabilityScore": 88,
				"reasoning": "Good fit",
				"benefits": ["High demand"],
				"warnings": []
			}
		],
		"generalAdvice": "Plant early"
	}`

	resp, strategy, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "verbatim", strategy)
	require.Len(t, resp.Recommendations, 1)
	require.Equal(t, "Maize", resp.Recommendations[0].Crop.Name)
	require.Equal(t, 88, resp.Recommendations[0].SuitabilityScore)
}

// TestParseFencedEmptyList verifies the scenario that used to bite in
// production: a fenced block with an empty-but-valid recommendations
// list parses successfully and must not look like a failure.
func TestParseFencedEmptyList(t *testing.T) {
	text := "```json\n{\"recommendations\": []}\n```"

	resp, _, err := ParseResponse(text)
	require.NoError(t, err)
	require.NotNil(t, resp.Recommendations)
	require.Empty(t, resp.Recommendations)
}

// TestParseFencedNoLanguageTag verifies fence stripping without a
// language tag.
func TestParseFencedNoLanguageTag(t *testing.T) {
	text := "```\n{\"recommendations\": [], \"generalAdvice\": \"ok\"}\n```"

	resp, _, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.GeneralAdvice)
}

// TestParseExtractsFromProse verifies the braced-region strategy when
// the model wraps JSON in chatter.
func TestParseExtractsFromProse(t *testing.T) {
	text := `Here are my picks for your farm:
{"recommendations": [{"crop": {"name": "Beans"}, "suitabilityScore": 75, "reasoning": "ok"}], "generalAdvice": "rotate"}
Hope that helps!`

	resp, strategy, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "extract", strategy)
	require.Equal(t, "Beans", resp.Recommendations[0].Crop.Name)
}

// TestParseRepairsTrailingCommas verifies trailing-comma repair.
func TestParseRepairsTrailingCommas(t *testing.T) {
	text := `{"recommendations": [
		{"crop": {"name": "Okra",}, "suitabilityScore": 60, "reasoning": "ok",},
	], "generalAdvice": "water well",}`

	resp, strategy, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "repair", strategy)
	require.Equal(t, "Okra", resp.Recommendations[0].Crop.Name)
}

// TestParseRepairsUnquotedKeys verifies bare-key quoting.
func TestParseRepairsUnquotedKeys(t *testing.T) {
	text := `{recommendations: [{crop: {name: "Millet"}, suitabilityScore: 80, reasoning: "dry fit"}], generalAdvice: "mulch"}`

	resp, strategy, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "repair", strategy)
	require.Equal(t, "Millet", resp.Recommendations[0].Crop.Name)
}

// TestParseRepairsSingleQuotes verifies single-quote normalization.
func TestParseRepairsSingleQuotes(t *testing.T) {
	text := `{'recommendations': [], 'generalAdvice': 'drain fields'}`

	resp, strategy, err := ParseResponse(text)
	require.NoError(t, err)
	require.Equal(t, "repair", strategy)
	require.Equal(t, "drain fields", resp.GeneralAdvice)
}

// TestParseMissingRecommendationsFails verifies that valid JSON
// without a recommendations key is rejected: a missing list is
// malformed, unlike an empty one.
func TestParseMissingRecommendationsFails(t *testing.T) {
	_, _, err := ParseResponse(`{"generalAdvice": "nothing to say"}`)
	require.ErrorIs(t, err, ErrUnparsable)
}

// TestParseGarbageFails verifies the chain gives up on non-JSON text.
func TestParseGarbageFails(t *testing.T) {
	_, _, err := ParseResponse("I am sorry, I cannot help with that.")
	require.ErrorIs(t, err, ErrUnparsable)
}

// TestStripCodeFences exercises the fence stripper directly.
func TestStripCodeFences(t *testing.T) {
	require.Equal(t, `{"a": 1}`,
		stripCodeFences("```json\n{\"a\": 1}\n```"))
	require.Equal(t, `{"a": 1}`,
		stripCodeFences(`{"a": 1}`))
	require.Equal(t, "plain text", stripCodeFences("plain text"))
}
