// Package recommend turns a weather forecast into a ranked crop list,
// surviving slow or broken generation backends via a multi-stage
// fallback chain, and coalescing duplicate concurrent requests per
// location.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/agrisense/agrisense/internal/cache"
	"github.com/agrisense/agrisense/internal/crop"
	"github.com/agrisense/agrisense/internal/genai"
	"github.com/agrisense/agrisense/internal/weather"
)

// Resolver orchestrates recommendation resolution: cache lookup,
// coalesced generation, parse-with-repair, and heuristic fallback.
//
// Only bad input (weather.ErrInsufficientData) ever surfaces as an
// error. Generation and parsing failures degrade quality, not
// availability: the caller always gets a usable recommendation set.
type Resolver struct {
	cache *cache.Service[*Response]
	gen   genai.Generator
	log   *slog.Logger

	// prefetchOK and prefetchFail count background prefetch
	// outcomes. Prefetch failures are absorbed, so the counters are
	// the only place they show up besides the log.
	prefetchOK   atomic.Uint64
	prefetchFail atomic.Uint64
}

// NewResolver creates a Resolver with the given collaborators. The
// cache is injected so tests and multiple engines can own independent
// instances.
func NewResolver(
	cacheSvc *cache.Service[*Response], gen genai.Generator,
	log *slog.Logger,
) *Resolver {

	if log == nil {
		log = slog.Default()
	}

	return &Resolver{
		cache: cacheSvc,
		gen:   gen,
		log:   log.With("component", "resolver"),
	}
}

// Resolve runs the per-request state machine:
//
//  1. Live cache entry (when UseCache) → returned immediately.
//  2. QuickFallback → heuristic result, no caching, no generation.
//  3. Otherwise a coalesced production: analyze, prompt, generate,
//     parse with repairs, fall back to the heuristic on any failure,
//     write the result back to the cache.
//
// Concurrent calls for the same location share one production and its
// outcome.
func (r *Resolver) Resolve(
	ctx context.Context, req Request,
) (*Response, error) {

	key := req.Location

	if req.UseCache {
		if opt := r.cache.Get(key); opt.IsSome() {
			r.log.Debug("Cache hit", "location", key)
			return opt.UnwrapOr(nil), nil
		}
	}

	// Analyze before anything suspends so that bad input fails fast
	// and is never absorbed by the fallback chain.
	summary, err := weather.Analyze(req.Weather)
	if err != nil {
		return nil, fmt.Errorf("analyze weather for %q: %w",
			req.Location, err)
	}

	if req.QuickFallback {
		return r.heuristicResponse(summary, req.Location), nil
	}

	return r.cache.Resolve(ctx, key,
		func(ctx context.Context) (*Response, error) {
			resp := r.produce(ctx, summary, req.Location)

			// Write-back applies to fallback results too:
			// a degraded answer that keeps the generator
			// idle beats re-asking a backend we just
			// watched fail.
			r.cache.Put(key, resp)

			return resp, nil
		},
	)
}

// produce executes one generation attempt and absorbs every failure
// mode into the heuristic fallback. It never returns nil.
func (r *Resolver) produce(
	ctx context.Context, summary weather.Summary, location string,
) *Response {

	prompt := BuildPrompt(location, summary)

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		r.log.Warn("Generation call failed, using heuristic",
			"location", location, "error", err)
		return r.heuristicResponse(summary, location)
	}

	parsed, strategy, err := ParseResponse(text)
	if err != nil {
		r.log.Warn("Unparsable generation response, using heuristic",
			"location", location, "response_len", len(text))
		return r.heuristicResponse(summary, location)
	}

	r.log.Debug("Parsed generation response",
		"location", location, "strategy", strategy,
		"recommendations", len(parsed.Recommendations))

	parsed.LocationName = location
	parsed.Source = SourceModel
	parsed.GeneratedAt = time.Now()
	if parsed.WeatherSummary == "" {
		parsed.WeatherSummary = describeSummary(summary)
	}

	return &parsed
}

// heuristicResponse builds a complete Response from the deterministic
// recommender. Total: never fails for a valid summary.
func (r *Resolver) heuristicResponse(
	summary weather.Summary, location string,
) *Response {

	return &Response{
		LocationName:    location,
		WeatherSummary:  describeSummary(summary),
		Recommendations: crop.Recommend(summary, location),
		GeneralAdvice: "Recommendations are based on local " +
			"forecast rules. Check soil moisture before " +
			"planting and stagger sowing dates to spread risk.",
		Source:      SourceHeuristic,
		GeneratedAt: time.Now(),
	}
}

// describeSummary renders the one-line human-readable weather digest.
func describeSummary(summary weather.Summary) string {
	return fmt.Sprintf(
		"%s: %.1f°C average with %.1fmm of rain expected this week.",
		summary.Conditions, summary.AverageTemperature,
		summary.TotalRainfall,
	)
}

// Prefetch warms the cache for a request in the background. It is
// fire-and-forget: failures are counted and logged but never returned,
// and an abandoned caller context does not cancel the warm-up (the
// generation call, once issued, should finish and populate the cache
// for the next reader).
func (r *Resolver) Prefetch(ctx context.Context, req Request) {
	req.UseCache = true
	req.QuickFallback = false

	bgCtx := context.WithoutCancel(ctx)

	go func() {
		if _, err := r.Resolve(bgCtx, req); err != nil {
			r.prefetchFail.Add(1)
			r.log.Warn("Prefetch failed",
				"location", req.Location, "error", err)
			return
		}
		r.prefetchOK.Add(1)
	}()
}

// PrefetchStats reports how many background prefetches succeeded and
// failed since the resolver was created.
func (r *Resolver) PrefetchStats() (ok, failed uint64) {
	return r.prefetchOK.Load(), r.prefetchFail.Load()
}
