package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

// DefaultExpiration is how long a saved cart stays valid after its last line change.
const DefaultExpiration = 20 * time.Minute

// Adapter round-trips one cart through a KV under a fixed key. Saved carts
// older than the expiration window are discarded on load.
type Adapter struct {
	kv     KV
	key    string
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*Adapter)

func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

func NewAdapter(kv KV, key string, window time.Duration, opts ...Option) *Adapter {
	if window <= 0 {
		window = DefaultExpiration
	}
	a := &Adapter{
		kv:     kv,
		key:    key,
		window: window,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CartKey is the KV key of a session's cart.
func CartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func (a *Adapter) Key() string {
	return a.key
}

// Save writes the state. Errors are logged and swallowed: the in-memory cart
// stays authoritative when the store is unavailable.
func (a *Adapter) Save(ctx context.Context, state domain.CartState) {
	encoded, err := Encode(state)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to encode cart", "key", a.key, "error", err)
		return
	}
	if err := a.kv.Set(ctx, a.key, encoded); err != nil {
		a.log.ErrorContext(ctx, "failed to save cart", "key", a.key, "error", err)
	}
}

// Load returns the saved state and true, or false when nothing usable is
// stored. Corrupted and expired entries are removed. A non-nil error means the
// KV could not be read and the saved cart, if any, was left untouched.
func (a *Adapter) Load(ctx context.Context) (domain.CartState, bool, error) {
	raw, err := a.kv.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return domain.CartState{}, false, nil
	}
	if err != nil {
		a.log.WarnContext(ctx, "failed to read saved cart", "key", a.key, "error", err)
		return domain.CartState{}, false, fmt.Errorf("read %s: %w", a.key, err)
	}

	state, err := Decode(raw)
	if err != nil {
		a.log.WarnContext(ctx, "saved cart corrupted, resetting", "key", a.key, "error", err)
		a.discard(ctx)
		return domain.CartState{}, false, nil
	}

	if age := a.now().Sub(state.LastModified); age >= a.window {
		a.log.InfoContext(ctx, "saved cart expired, clearing", "key", a.key, "age", age.String())
		a.discard(ctx)
		return domain.CartState{}, false, nil
	}

	return state, true, nil
}

func (a *Adapter) discard(ctx context.Context) {
	if err := a.kv.Remove(ctx, a.key); err != nil {
		a.log.WarnContext(ctx, "failed to remove saved cart", "key", a.key, "error", err)
	}
}
