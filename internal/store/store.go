package store

import (
	"sync"
	"time"

	"github.com/mvasek/keva-go/internal/telemetry/logger"
)

// DefaultSweepInterval is how often the sweeper evicts expired entries.
const DefaultSweepInterval = 10 * time.Second

// entry is one stored key's state. A zero ttl means the entry never
// expires.
type entry struct {
	value     Value
	createdAt time.Time
	ttl       time.Duration
}

// expired reports whether the entry is semantically absent at now.
// Non-expiring entries never expire.
func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && !now.Before(e.createdAt.Add(e.ttl))
}

// Store is a concurrent map from keys to optionally-expiring values.
//
// Reads take the shared lock and check expiration at call time, so an
// expired-but-unswept entry is indistinguishable from an absent one.
// The sweeper is a reclamation optimization, never a correctness
// requirement.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	sweepInterval time.Duration
	log           logger.Logger

	// onSweep, when set, observes the number of entries each sweep
	// evicted. Used to feed metrics.
	onSweep func(evicted int)

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Option configures the Store.
type Option func(*Store)

// WithSweepInterval sets the sweeper period.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithSweepObserver registers a callback invoked after each sweep with
// the number of evicted entries.
func WithSweepObserver(fn func(evicted int)) Option {
	return func(s *Store) {
		s.onSweep = fn
	}
}

// New creates a store. The sweeper does not run until Start is called.
func New(opts ...Option) *Store {
	s := &Store{
		entries:       make(map[string]entry, 1024),
		sweepInterval: DefaultSweepInterval,
		log:           logger.Default(),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set inserts or overwrites the entry for key. A ttl of zero (or
// negative) stores a non-expiring entry. Set always succeeds.
func (s *Store) Set(key []byte, value Value, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.createdAt = time.Now()
		e.ttl = ttl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[string(key)] = e
}

// Get returns the value for key if present and not expired as of the
// call time. The expiration check here is authoritative; the sweeper
// may lag behind.
func (s *Store) Get(key []byte) (Value, bool) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	// string(key) in a map index does not allocate; the key is only
	// copied when an entry is inserted.
	e, ok := s.entries[string(key)]
	if !ok || e.expired(now) {
		return Value{}, false
	}
	return e.value, true
}

// Len returns the number of physically present entries, including
// expired ones the sweeper has not reclaimed yet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep evicts expired entries and returns how many were removed.
//
// The scan runs under the shared lock so readers are never blocked for
// the whole pass; removal re-verifies expiration under the exclusive
// lock because a concurrent Set may have refreshed a candidate between
// the two phases.
func (s *Store) Sweep() int {
	now := time.Now()

	s.mu.RLock()
	var candidates []string
	for key, e := range s.entries {
		if e.expired(now) {
			candidates = append(candidates, key)
		}
	}
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	evicted := 0
	now = time.Now()

	s.mu.Lock()
	for _, key := range candidates {
		if e, ok := s.entries[key]; ok && e.expired(now) {
			delete(s.entries, key)
			evicted++
		}
	}
	s.mu.Unlock()

	return evicted
}

// Start launches the background sweeper. It is safe to call once;
// subsequent calls are no-ops.
func (s *Store) Start() {
	s.startOnce.Do(func() {
		go s.sweepLoop()
	})
}

func (s *Store) sweepLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			evicted := s.Sweep()
			if evicted > 0 {
				s.log.Debug("sweep evicted expired keys", "count", evicted)
			}
			if s.onSweep != nil {
				s.onSweep(evicted)
			}

		case <-s.stopCh:
			return
		}
	}
}

// Close stops the sweeper and waits for it to finish. The store remains
// readable; only background reclamation stops.
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	select {
	case <-s.doneCh:
	default:
		// Sweeper was never started; doneCh will never close.
		s.startOnce.Do(func() { close(s.doneCh) })
		<-s.doneCh
	}
	return nil
}
