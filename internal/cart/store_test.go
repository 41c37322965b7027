package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	states []domain.CartState
}

func (r *recorder) listen(s domain.CartState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func TestNewStore_Empty(t *testing.T) {
	clock := &testClock{now: t0}
	s := NewStore(WithClock(clock.Now))

	assert.Empty(t, s.Lines())
	assert.False(t, s.IsOpen())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, t0, s.Snapshot().LastModified)
}

func TestStore_NotifiesOnChangeOnly(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.listen)

	assert.True(t, s.AddItem(mateImperial))
	assert.False(t, s.RemoveItem("404"))
	assert.False(t, s.SetQuantity("404", 3))
	assert.True(t, s.SetQuantity("1", 5))
	assert.False(t, s.SetOpen(false))
	assert.True(t, s.ToggleOpen())
	assert.True(t, s.Clear())
	assert.False(t, s.Clear())

	require.Equal(t, 4, rec.count())
	assert.Equal(t, 1, rec.states[0].Lines[0].Quantity)
	assert.Equal(t, 5, rec.states[1].Lines[0].Quantity)
	assert.True(t, rec.states[2].IsOpen)
	assert.Empty(t, rec.states[3].Lines)
}

func TestStore_ListenersInRegistrationOrder(t *testing.T) {
	s := NewStore()
	var order []string
	s.Subscribe(func(domain.CartState) { order = append(order, "first") })
	s.Subscribe(func(domain.CartState) { order = append(order, "second") })

	s.AddItem(mateTorpedo)

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStore_ListenerGetsCopy(t *testing.T) {
	s := NewStore()
	s.Subscribe(func(state domain.CartState) {
		if len(state.Lines) > 0 {
			state.Lines[0].Quantity = 99
		}
	})

	s.AddItem(mateImperial)

	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestStore_RestoreDoesNotNotify(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.listen)

	s.Restore(domain.CartState{Lines: []domain.CartLine{line(mateTorpedo, 5)}, IsOpen: true, LastModified: t0})

	assert.Equal(t, 0, rec.count())
	assert.True(t, s.IsOpen())
	assert.Equal(t, 5, s.ItemCount())
	assert.True(t, s.Total().Equal(decimal.NewFromInt(34300)))
	assert.True(t, s.Savings().Equal(decimal.NewFromInt(14700)))
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := NewStore()
	rec := &recorder{}
	s.Subscribe(rec.listen)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(mateImperial)
		}()
	}
	wg.Wait()

	require.Len(t, s.Lines(), 1)
	assert.Equal(t, 50, s.Lines()[0].Quantity)

	// the last state a listener saw is the final state
	rec.mu.Lock()
	last := rec.states[len(rec.states)-1]
	rec.mu.Unlock()
	assert.Equal(t, 50, last.Lines[0].Quantity)

	for i := 1; i < len(rec.states); i++ {
		assert.Greater(t, rec.states[i].Lines[0].Quantity, rec.states[i-1].Lines[0].Quantity)
	}
}
