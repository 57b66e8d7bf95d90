// Package genai abstracts the external text-generation capability. The
// engine only ever needs prompt-in/text-out; everything about the
// backend (model, hosting, retries) hides behind the Generator
// interface.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestTimeout bounds a single generation HTTP call. The
// resolver's fallback chain is the real safety net for slow backends,
// but the network call itself still gets a ceiling to avoid tying up
// connections indefinitely.
const DefaultRequestTimeout = 30 * time.Second

// Generator produces free-form text for a prompt. Implementations may
// be arbitrarily slow or flaky; callers are expected to wrap calls with
// their own fallback handling.
type Generator interface {
	// Generate returns the model output for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(
	ctx context.Context, prompt string,
) (string, error) {

	return f(ctx, prompt)
}

// HTTPGenerator calls a remote generation endpoint over HTTP. The
// endpoint accepts a JSON body {"prompt": "..."} and answers with
// {"text": "..."}.
type HTTPGenerator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPGenerator creates an HTTPGenerator for the given endpoint. A
// nil client gets a default one with DefaultRequestTimeout applied.
func NewHTTPGenerator(endpoint string, client *http.Client) *HTTPGenerator {
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}

	return &HTTPGenerator{
		endpoint: endpoint,
		client:   client,
	}
}

// generateRequest is the wire request body.
type generateRequest struct {
	Prompt string `json:"prompt"`
}

// generateResponse is the wire response body.
type generateResponse struct {
	Text string `json:"text"`
}

// Generate implements Generator.
func (g *HTTPGenerator) Generate(
	ctx context.Context, prompt string,
) (string, error) {

	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation endpoint returned %s",
			resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	return out.Text, nil
}

// RateLimitedGenerator wraps a Generator with a token-bucket rate
// limit, so a burst of uncached locations cannot flood the backend.
type RateLimitedGenerator struct {
	inner   Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator creates a rate-limited wrapper allowing rps
// requests per second with the given burst size.
func NewRateLimitedGenerator(
	inner Generator, rps float64, burst int,
) *RateLimitedGenerator {

	return &RateLimitedGenerator{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate waits for rate-limiter permission, then forwards to the
// wrapped Generator.
func (r *RateLimitedGenerator) Generate(
	ctx context.Context, prompt string,
) (string, error) {

	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}

	return r.inner.Generate(ctx, prompt)
}
