package recommend

import (
	"time"

	"github.com/agrisense/agrisense/internal/crop"
	"github.com/agrisense/agrisense/internal/weather"
)

// Source records which path produced a Response.
type Source string

const (
	// SourceModel marks responses parsed from the generation backend.
	SourceModel Source = "model"

	// SourceHeuristic marks responses computed by the deterministic
	// fallback recommender.
	SourceHeuristic Source = "heuristic"
)

// Request parameterizes a single resolution.
type Request struct {
	// Weather is the hourly forecast series for the location.
	Weather weather.HourlySeries

	// Location names the place being resolved. It doubles as the
	// cache key, case-sensitive as given.
	Location string

	// UseCache enables the cache-hit short circuit.
	UseCache bool

	// QuickFallback skips the generation backend entirely and
	// returns the heuristic result without caching it. Used for
	// instant first paint while a full resolution runs behind it.
	QuickFallback bool
}

// Response is the unit returned to callers and stored in the TTL cache.
// It is never persisted long-term; each session recomputes it.
type Response struct {
	// LocationName echoes the requested location.
	LocationName string `json:"locationName"`

	// WeatherSummary is a human-readable digest of the forecast.
	WeatherSummary string `json:"weatherSummary"`

	// Recommendations is the ranked crop list. An empty-but-present
	// list is a valid answer, distinct from a malformed one.
	Recommendations []crop.Recommendation `json:"recommendations"`

	// GeneralAdvice is free-text guidance that applies across crops.
	GeneralAdvice string `json:"generalAdvice"`

	// Source records which path produced this response.
	Source Source `json:"source,omitempty"`

	// GeneratedAt is when the response was produced.
	GeneratedAt time.Time `json:"generatedAt,omitempty"`
}
