// Package cache provides an in-memory TTL cache with request
// coalescing. A Service instance owns both the entry map and the
// in-flight registry; callers construct and inject it rather than
// sharing a process-wide singleton, so tests and multiple independent
// caches stay cheap.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a cached value remains live. The threshold is
// policy, not physics, so it stays configurable.
const DefaultTTL = 30 * time.Minute

// Config holds tunables for a cache Service.
type Config struct {
	// TTL is the entry time-to-live. Entries older than this are
	// logically absent and evicted on the next read.
	TTL time.Duration
}

// DefaultConfig returns a Config with the default TTL.
func DefaultConfig() Config {
	return Config{
		TTL: DefaultTTL,
	}
}

// entry is a stored value plus its insertion time.
type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Service is a concurrency-safe TTL cache keyed by string, with at most
// one in-flight producer per key.
type Service[V any] struct {
	cfg Config
	log *slog.Logger

	// clock is injectable for TTL tests.
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]entry[V]

	// group coalesces concurrent producers: all callers for the same
	// key share one execution and its outcome, and the in-flight
	// marker is dropped when it completes regardless of success or
	// failure.
	group singleflight.Group
}

// Option is a functional option for NewService.
type Option[V any] func(*Service[V])

// WithClock overrides the time source. Tests use this to step through
// TTL expiry without sleeping.
func WithClock[V any](clock func() time.Time) Option[V] {
	return func(s *Service[V]) {
		s.clock = clock
	}
}

// NewService creates a cache Service with the given configuration.
func NewService[V any](
	cfg Config, log *slog.Logger, opts ...Option[V],
) *Service[V] {
	if log == nil {
		log = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	s := &Service[V]{
		cfg:     cfg,
		log:     log.With("component", "cache"),
		clock:   time.Now,
		entries: make(map[string]entry[V]),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the live value for key, or None if the key is absent or
// expired. Expired entries are evicted as a side effect of the read so
// staleness never depends on a background sweep.
func (s *Service[V]) Get(key string) fn.Option[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return fn.None[V]()
	}

	if s.clock().Sub(ent.insertedAt) > s.cfg.TTL {
		delete(s.entries, key)
		return fn.None[V]()
	}

	return fn.Some(ent.value)
}

// Put stores value under key, unconditionally overwriting any previous
// entry and resetting its insertion time.
func (s *Service[V]) Put(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{
		value:      value,
		insertedAt: s.clock(),
	}
}

// Invalidate removes the entry for key, if any.
func (s *Service[V]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// InvalidateAll drops every entry.
func (s *Service[V]) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry[V])
}

// Len returns the number of stored entries, including any that have
// expired but not yet been evicted by a read.
func (s *Service[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Resolve returns the result of producer for key, coalescing concurrent
// calls: while a production for key is in flight, additional callers
// block and receive the same value or error. Once the shared call
// completes the in-flight marker is released, so a later Resolve always
// gets a fresh attempt.
//
// Resolve does not consult or populate the cache itself; producers that
// want write-back call Put before returning. Keeping the two concerns
// separate lets the resolver decide per-path whether a result is worth
// caching.
func (s *Service[V]) Resolve(
	ctx context.Context, key string,
	producer func(ctx context.Context) (V, error),
) (V, error) {

	v, err, shared := s.group.Do(key, func() (any, error) {
		return producer(ctx)
	})
	if shared {
		s.log.Debug("Coalesced duplicate request", "key", key)
	}

	if err != nil {
		var zero V
		return zero, err
	}

	return v.(V), nil
}
