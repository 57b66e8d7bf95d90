package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrisense/agrisense/internal/crop"
)

// TestHTTPRemoteStoreFetch verifies the GET path and document decode.
func TestHTTPRemoteStoreFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			json.NewEncoder(w).Encode(savedCropsDoc{
				SavedCrops: []crop.Crop{{Name: "Maize"}},
			})
		}))
	defer server.Close()

	remote := NewHTTPRemoteStore(server.URL, nil)

	crops, err := remote.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, crops, 1)
	require.Equal(t, "Maize", crops[0].Name)
}

// TestHTTPRemoteStoreFetchMissingDocument verifies that 404 reads as an
// empty set, not an error.
func TestHTTPRemoteStoreFetchMissingDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
	defer server.Close()

	remote := NewHTTPRemoteStore(server.URL, nil)

	crops, err := remote.Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, crops)
}

// TestHTTPRemoteStoreReplace verifies the PUT path and wire format.
func TestHTTPRemoteStoreReplace(t *testing.T) {
	var got savedCropsDoc
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPut, r.Method)
			require.NoError(t,
				json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
	defer server.Close()

	remote := NewHTTPRemoteStore(server.URL, nil)

	err := remote.Replace(
		context.Background(), []crop.Crop{{Name: "Beans"}},
	)
	require.NoError(t, err)
	require.Len(t, got.SavedCrops, 1)
	require.Equal(t, "Beans", got.SavedCrops[0].Name)
	require.False(t, got.UpdatedAt.IsZero())
}

// TestHTTPRemoteStoreReplaceServerError verifies error surfacing.
func TestHTTPRemoteStoreReplaceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope",
				http.StatusInternalServerError)
		}))
	defer server.Close()

	remote := NewHTTPRemoteStore(server.URL, nil)

	err := remote.Replace(context.Background(), nil)
	require.Error(t, err)
}

// TestHTTPProbe verifies that any response means online and transport
// failure means offline.
func TestHTTPProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			// Even an error status proves reachability.
			http.Error(w, "teapot", http.StatusTeapot)
		}))

	probe := NewHTTPProbe(server.URL, nil)
	require.True(t, probe.Online(context.Background()))

	server.Close()
	require.False(t, probe.Online(context.Background()))
}
