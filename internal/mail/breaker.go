package mail

import (
	"context"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/SantiagoTucci/circulo-matero/pkg/circuitbreaker"
)

// BreakerSender fails fast while the wrapped sender keeps failing.
type BreakerSender struct {
	next    Sender
	breaker *circuitbreaker.Breaker
}

func NewBreakerSender(next Sender, breaker *circuitbreaker.Breaker) *BreakerSender {
	return &BreakerSender{next: next, breaker: breaker}
}

func (b *BreakerSender) Send(ctx context.Context, order *domain.Order) error {
	return b.breaker.Do(func() error {
		return b.next.Send(ctx, order)
	})
}
