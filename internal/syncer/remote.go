package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrisense/agrisense/internal/crop"
)

// defaultRemoteTimeout bounds remote document calls.
const defaultRemoteTimeout = 15 * time.Second

// RemoteStore is the per-user remote document holding the saved crop
// set. A missing document reads as an empty set; Replace creates the
// document when it does not exist.
type RemoteStore interface {
	// Fetch returns the remote saved crop set.
	Fetch(ctx context.Context) ([]crop.Crop, error)

	// Replace overwrites the remote saved crop set.
	Replace(ctx context.Context, crops []crop.Crop) error
}

// savedCropsDoc is the remote document wire format.
type savedCropsDoc struct {
	SavedCrops []crop.Crop `json:"savedCrops"`
	UpdatedAt  time.Time   `json:"updatedAt,omitempty"`
}

// HTTPRemoteStore talks to a JSON document endpoint: GET to fetch, PUT
// to replace.
type HTTPRemoteStore struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRemoteStore creates an HTTPRemoteStore for the given document
// URL. A nil client gets a default one with a timeout applied.
func NewHTTPRemoteStore(endpoint string, client *http.Client) *HTTPRemoteStore {
	if client == nil {
		client = &http.Client{Timeout: defaultRemoteTimeout}
	}

	return &HTTPRemoteStore{
		endpoint: endpoint,
		client:   client,
	}
}

// Fetch implements RemoteStore. A 404 is not an error: the document
// simply has not been created yet, so the set is empty.
func (r *HTTPRemoteStore) Fetch(ctx context.Context) ([]crop.Crop, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, r.endpoint, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch remote crops: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote store returned %s",
			resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read remote document: %w", err)
	}

	var doc savedCropsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode remote document: %w", err)
	}

	return doc.SavedCrops, nil
}

// Replace implements RemoteStore.
func (r *HTTPRemoteStore) Replace(
	ctx context.Context, crops []crop.Crop,
) error {

	body, err := json.Marshal(savedCropsDoc{
		SavedCrops: crops,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal remote document: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, r.endpoint, bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("build replace request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("replace remote crops: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusNoContent {

		return fmt.Errorf("remote store returned %s", resp.Status)
	}

	return nil
}
