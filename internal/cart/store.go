package cart

import (
	"sync"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/shopspring/decimal"
)

// Listener receives every new state produced by a changing transition.
type Listener func(state domain.CartState)

// Store is the single owner of one cart. All mutation goes through Dispatch.
type Store struct {
	mu    sync.RWMutex
	state domain.CartState
	seq   uint64
	now   func() time.Time

	// notifyMu serializes listener calls. A state older than the last one
	// delivered is skipped, so listeners never go back in time.
	notifyMu  sync.Mutex
	notified  uint64
	listeners []Listener
}

type StoreOption func(*Store)

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns a Store holding an empty cart.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.state = domain.EmptyCart(s.now())
	return s
}

// Subscribe registers l for all future changes. Listeners run in the
// dispatching goroutine, after the state lock has been released, and must not
// call Dispatch.
func (s *Store) Subscribe(l Listener) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Dispatch applies action and reports whether the cart changed.
func (s *Store) Dispatch(action Action) bool {
	s.mu.Lock()
	next, changed := Reduce(s.state, action, s.now())
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.notified {
		return true
	}
	s.notified = seq

	for _, l := range s.listeners {
		l(next.Clone())
	}
	return true
}

// Restore replaces the whole state without notifying listeners. It is used
// once, when a saved cart is loaded.
func (s *Store) Restore(state domain.CartState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, _ = Reduce(s.state, Restore{State: state}, s.now())
}

func (s *Store) AddItem(p domain.Product) bool { return s.Dispatch(AddItem{Product: p}) }

func (s *Store) SetQuantity(productID string, quantity int) bool {
	return s.Dispatch(SetQuantity{ProductID: productID, Quantity: quantity})
}

func (s *Store) RemoveItem(productID string) bool {
	return s.Dispatch(RemoveItem{ProductID: productID})
}

func (s *Store) Clear() bool         { return s.Dispatch(ClearCart{}) }
func (s *Store) ToggleOpen() bool    { return s.Dispatch(ToggleOpen{}) }
func (s *Store) SetOpen(o bool) bool { return s.Dispatch(SetOpen{Open: o}) }

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *Store) Lines() []domain.CartLine {
	return s.Snapshot().Lines
}

func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsOpen
}

// LastModified is the time of the last line change.
func (s *Store) LastModified() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastModified
}

func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Total()
}

func (s *Store) Savings() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Savings()
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ItemCount()
}
