package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHTTPGeneratorRoundTrip verifies the wire format against a live
// test server.
func TestHTTPGeneratorRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json",
				r.Header.Get("Content-Type"))

			var req generateRequest
			require.NoError(t,
				json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "plant advice please", req.Prompt)

			json.NewEncoder(w).Encode(generateResponse{
				Text: "plant sorghum",
			})
		}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, nil)

	text, err := gen.Generate(
		context.Background(), "plant advice please",
	)
	require.NoError(t, err)
	require.Equal(t, "plant sorghum", text)
}

// TestHTTPGeneratorNonOKStatus verifies that backend errors surface as
// errors rather than empty output.
func TestHTTPGeneratorNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded",
				http.StatusServiceUnavailable)
		}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, nil)

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

// TestHTTPGeneratorBadJSON verifies decode failures are reported.
func TestHTTPGeneratorBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
	defer server.Close()

	gen := NewHTTPGenerator(server.URL, nil)

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
}

// TestRateLimitedGeneratorForwards verifies pass-through within the
// burst allowance.
func TestRateLimitedGeneratorForwards(t *testing.T) {
	var calls int
	inner := GeneratorFunc(func(
		ctx context.Context, prompt string,
	) (string, error) {
		calls++
		return "ok", nil
	})

	gen := NewRateLimitedGenerator(inner, 100, 2)

	for i := 0; i < 2; i++ {
		text, err := gen.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		require.Equal(t, "ok", text)
	}
	require.Equal(t, 2, calls)
}

// TestRateLimitedGeneratorRespectsContext verifies that a canceled
// context aborts the limiter wait instead of calling the backend.
func TestRateLimitedGeneratorRespectsContext(t *testing.T) {
	inner := GeneratorFunc(func(
		ctx context.Context, prompt string,
	) (string, error) {
		t.Fatal("backend must not be called")
		return "", nil
	})

	// Zero burst: every wait blocks until cancellation.
	gen := NewRateLimitedGenerator(inner, 1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, "prompt")
	require.Error(t, err)
}
