package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

type mockSender struct {
	mu     sync.Mutex
	orders []*domain.Order
	err    error
	// block, when set, holds Send until it is closed
	block   chan struct{}
	entered chan struct{}
}

func (m *mockSender) Send(ctx context.Context, order *domain.Order) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockSender) sent() []*domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders
}

type mockPublisher struct {
	mu     sync.Mutex
	orders []*domain.Order
	err    error
}

func (m *mockPublisher) PublishOrderSubmitted(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	return m.err
}

var errMailDown = errors.New("mail provider unavailable")
