package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/cart"
	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	submittedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mate        = domain.Product{ID: "1", Name: "Mate Imperial Premium", Price: decimal.NewFromInt(12500)}
)

func newTestService(sender Sender, publisher Publisher) *Service {
	s := NewService(sender, publisher, nil)
	s.now = func() time.Time { return submittedAt }
	s.newRef = func() string { return "order-ref-1" }
	return s
}

func filledCart(quantity int) *cart.Store {
	store := cart.NewStore()
	store.AddItem(mate)
	store.SetQuantity(mate.ID, quantity)
	return store
}

func TestSubmit_Success(t *testing.T) {
	sender := &mockSender{}
	publisher := &mockPublisher{}
	sut := newTestService(sender, publisher)
	store := filledCart(5)

	contact := validContact
	contact.Name = "  Lucía Pérez  "
	order, err := sut.Submit(context.Background(), "s1", store, contact)

	require.NoError(t, err)
	assert.Equal(t, "order-ref-1", order.Reference)
	assert.Equal(t, "Lucía Pérez", order.Contact.Name)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(43750)))
	assert.Equal(t, submittedAt, order.SubmittedAt)

	require.Len(t, sender.sent(), 1)
	assert.Same(t, order, sender.sent()[0])
	assert.Len(t, publisher.orders, 1)

	assert.Empty(t, store.Lines(), "cart is cleared after a successful submission")
}

func TestSubmit_EmptyEmailIsRejected(t *testing.T) {
	sender := &mockSender{}
	sut := newTestService(sender, nil)
	store := filledCart(1)
	before := store.Snapshot()

	contact := validContact
	contact.Email = ""
	_, err := sut.Submit(context.Background(), "s1", store, contact)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Empty(t, sender.sent(), "no submission attempt is made")
	assert.Equal(t, before, store.Snapshot(), "cart unchanged")
}

func TestSubmit_EmptyCart(t *testing.T) {
	sender := &mockSender{}
	sut := newTestService(sender, nil)

	_, err := sut.Submit(context.Background(), "s1", cart.NewStore(), validContact)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, sender.sent())
}

func TestSubmit_SenderFailureKeepsCart(t *testing.T) {
	sender := &mockSender{err: errMailDown}
	publisher := &mockPublisher{}
	sut := newTestService(sender, publisher)
	store := filledCart(2)

	_, err := sut.Submit(context.Background(), "s1", store, validContact)

	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.ErrorIs(t, err, errMailDown)
	require.Len(t, store.Lines(), 1)
	assert.Equal(t, 2, store.Lines()[0].Quantity)
	assert.Empty(t, publisher.orders)

	// the customer can resubmit once the provider recovers
	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()
	_, err = sut.Submit(context.Background(), "s1", store, validContact)
	require.NoError(t, err)
	assert.Empty(t, store.Lines())
}

func TestSubmit_PublisherFailureDoesNotFailOrder(t *testing.T) {
	sut := newTestService(&mockSender{}, &mockPublisher{err: errors.New("broker down")})
	store := filledCart(1)

	_, err := sut.Submit(context.Background(), "s1", store, validContact)

	require.NoError(t, err)
	assert.Empty(t, store.Lines())
}

func TestSubmit_DoubleSubmitGuard(t *testing.T) {
	sender := &mockSender{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	sut := newTestService(sender, nil)
	store := filledCart(1)

	done := make(chan error, 1)
	go func() {
		_, err := sut.Submit(context.Background(), "s1", store, validContact)
		done <- err
	}()
	<-sender.entered

	_, err := sut.Submit(context.Background(), "s1", store, validContact)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	// other sessions are not blocked
	other := filledCart(1)
	otherDone := make(chan error, 1)
	go func() {
		_, err := sut.Submit(context.Background(), "s2", other, validContact)
		otherDone <- err
	}()
	<-sender.entered

	close(sender.block)
	require.NoError(t, <-done)
	require.NoError(t, <-otherDone)
	assert.Len(t, sender.sent(), 2)

	// guard is released once the first submission finished
	store.AddItem(mate)
	sender.entered = nil
	_, err = sut.Submit(context.Background(), "s1", store, validContact)
	assert.NoError(t, err)
}

// slowSnapshotCart holds Snapshot until release is closed.
type slowSnapshotCart struct {
	*cart.Store
	entered chan struct{}
	release chan struct{}
}

func (c *slowSnapshotCart) Snapshot() domain.CartState {
	c.entered <- struct{}{}
	<-c.release
	return c.Store.Snapshot()
}

func TestSubmit_SnapshotTakenUnderGuard(t *testing.T) {
	sender := &mockSender{}
	sut := newTestService(sender, nil)
	store := filledCart(2)
	slow := &slowSnapshotCart{Store: store, entered: make(chan struct{}, 1), release: make(chan struct{})}

	first := make(chan error, 1)
	go func() {
		_, err := sut.Submit(context.Background(), "s1", slow, validContact)
		first <- err
	}()
	<-slow.entered

	// a second submission of the same cart while the first is still reading it
	_, err := sut.Submit(context.Background(), "s1", store, validContact)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(slow.release)
	require.NoError(t, <-first)

	// the cart was cleared by the first submission
	_, err = sut.Submit(context.Background(), "s1", store, validContact)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, sender.sent(), 1, "one cart must be emailed once")
}
