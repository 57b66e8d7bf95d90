package syncer

import (
	"context"
	"net/http"
	"time"
)

// defaultProbeTimeout bounds a single connectivity check.
const defaultProbeTimeout = 5 * time.Second

// Probe reports whether the device currently has working internet
// reachability. It is best-effort and is re-checked on every sync
// decision rather than cached: link state changes faster than any
// cache policy would tolerate.
type Probe interface {
	// Online returns true when the remote side is reachable.
	Online(ctx context.Context) bool
}

// ProbeFunc adapts a plain function to the Probe interface.
type ProbeFunc func(ctx context.Context) bool

// Online implements Probe.
func (f ProbeFunc) Online(ctx context.Context) bool {
	return f(ctx)
}

// HTTPProbe checks reachability with a HEAD request to a known
// endpoint, typically the remote store itself.
type HTTPProbe struct {
	url    string
	client *http.Client
}

// NewHTTPProbe creates an HTTPProbe against the given URL. A nil
// client gets a default one with a short timeout.
func NewHTTPProbe(url string, client *http.Client) *HTTPProbe {
	if client == nil {
		client = &http.Client{Timeout: defaultProbeTimeout}
	}

	return &HTTPProbe{
		url:    url,
		client: client,
	}
}

// Online implements Probe. Any HTTP response counts as reachable; only
// transport-level failure means offline.
func (p *HTTPProbe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodHead, p.url, nil,
	)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return true
}
