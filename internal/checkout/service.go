package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/google/uuid"
)

// Sender delivers an order to the store by email.
type Sender interface {
	Send(ctx context.Context, order *domain.Order) error
}

// Publisher announces submitted orders to other systems.
type Publisher interface {
	PublishOrderSubmitted(ctx context.Context, order *domain.Order) error
}

// Cart is the part of a cart store checkout needs.
type Cart interface {
	Snapshot() domain.CartState
	Clear() bool
}

type Service struct {
	sender    Sender
	publisher Publisher
	now       func() time.Time
	newRef    func() string
	log       *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(sender Sender, publisher Publisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sender:    sender,
		publisher: publisher,
		now:       time.Now,
		newRef:    uuid.NewString,
		log:       log,
		inFlight:  make(map[string]struct{}),
	}
}

// Submit validates the contact, emails the order built from the cart and
// clears the cart once the email was accepted. On failure the cart is left
// as it was so the customer can try again. Only one submission per session
// may be pending at a time.
func (s *Service) Submit(ctx context.Context, session string, cart Cart, contact domain.Contact) (*domain.Order, error) {
	if err := ValidateContact(contact); err != nil {
		return nil, err
	}

	if !s.begin(session) {
		return nil, ErrSubmissionInProgress
	}
	defer s.end(session)

	// The snapshot is taken under the in-flight marker so a cart that another
	// submission already sent and cleared is seen as empty.
	snapshot := cart.Snapshot()
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order := domain.NewOrder(s.newRef(), contact.Normalize(), snapshot, s.now())

	if err := s.sender.Send(ctx, order); err != nil {
		s.log.ErrorContext(ctx, "order email failed",
			"session", session,
			"reference", order.Reference,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	cart.Clear()
	s.log.InfoContext(ctx, "order submitted",
		"session", session,
		"reference", order.Reference,
		"lines", len(order.Lines),
		"total", order.Total.String())

	if s.publisher != nil {
		if err := s.publisher.PublishOrderSubmitted(ctx, order); err != nil {
			s.log.WarnContext(ctx, "failed to publish order event", "reference", order.Reference, "error", err)
		}
	}

	return order, nil
}

func (s *Service) begin(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[session]; busy {
		return false
	}
	s.inFlight[session] = struct{}{}
	return true
}

func (s *Service) end(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, session)
}
