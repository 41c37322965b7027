package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/SantiagoTucci/circulo-matero/internal/persistence"
	"golang.org/x/sync/singleflight"
)

const (
	// CleanupInterval is how often idle stores are evicted from memory.
	CleanupInterval = time.Minute

	saveTimeout = time.Second
	loadTimeout = 2 * time.Second
)

// ErrUnavailable is returned by Get when a session's saved cart could not be read.
var ErrUnavailable = errors.New("cart storage unavailable")

type entry struct {
	store      *Store
	lastAccess time.Time
}

// Registry owns one Store per browser session. Stores are restored from the
// KV on first use and saved back on every change.
type Registry struct {
	kv     persistence.KV
	window time.Duration
	now    func() time.Time
	log    *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	sfg     singleflight.Group // one load per session

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

type RegistryOption func(*Registry)

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

func WithRegistryLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) { r.log = log }
}

// NewRegistry starts the background eviction loop; call Close to stop it.
func NewRegistry(kv persistence.KV, window time.Duration, opts ...RegistryOption) *Registry {
	if window <= 0 {
		window = persistence.DefaultExpiration
	}
	r := &Registry{
		kv:          kv,
		window:      window,
		now:         time.Now,
		log:         slog.Default(),
		entries:     make(map[string]*entry),
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// Get returns the session's store, restoring it from the KV if it is not in
// memory. When the KV cannot be read nothing is cached, so the next call tries
// again instead of replacing the saved cart with an empty one.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	if s := r.lookup(sessionID); s != nil {
		return s, nil
	}

	v, err, _ := r.sfg.Do(sessionID, func() (interface{}, error) {
		if s := r.lookup(sessionID); s != nil {
			return s, nil
		}

		// shared by every caller waiting on this load, so it must not die with the first request
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		s, err := r.open(loadCtx, sessionID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.entries[sessionID] = &entry{store: s, lastAccess: r.now()}
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Store), nil
}

// lookup returns the cached store, or nil when there is none or its cart has
// outlived the expiration window. An expired store is dropped so the next
// load discards the saved copy too.
func (r *Registry) lookup(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		return nil
	}
	now := r.now()
	if r.expired(e.store, now) {
		delete(r.entries, sessionID)
		return nil
	}
	e.lastAccess = now
	return e.store
}

func (r *Registry) expired(s *Store, now time.Time) bool {
	return now.Sub(s.LastModified()) >= r.window
}

func (r *Registry) open(ctx context.Context, sessionID string) (*Store, error) {
	adapter := persistence.NewAdapter(r.kv, persistence.CartKey(sessionID), r.window,
		persistence.WithClock(r.now),
		persistence.WithLogger(r.log))

	saved, ok, err := adapter.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s := NewStore(WithClock(r.now))
	if ok {
		s.Restore(saved)
		r.log.DebugContext(ctx, "cart restored", "session", sessionID, "lines", len(saved.Lines))
	}

	s.Subscribe(func(state domain.CartState) {
		saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		adapter.Save(saveCtx, state)
	})
	return s, nil
}

// Len is the number of stores currently held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops stores nobody touched within the expiration window and
// stores whose cart expired. Their last state is already in the KV.
func (r *Registry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, e := range r.entries {
		if now.Sub(e.lastAccess) >= r.window || r.expired(e.store, now) {
			delete(r.entries, id)
		}
	}
}

func (r *Registry) Close() error {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
	r.wg.Wait()
	return nil
}
