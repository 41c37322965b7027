package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SantiagoTucci/circulo-matero/internal/cart"
	"github.com/SantiagoTucci/circulo-matero/internal/catalog"
	"github.com/SantiagoTucci/circulo-matero/internal/checkout"
	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/SantiagoTucci/circulo-matero/internal/persistence"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type catalogMock struct {
	products []domain.Product
	err      error
}

func (m *catalogMock) List(_ context.Context, category string) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Product
	for _, p := range m.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *catalogMock) Get(_ context.Context, id string) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, catalog.ErrProductNotFound
}

type senderMock struct {
	mu     sync.Mutex
	err    error
	orders []*domain.Order
}

func (m *senderMock) Send(_ context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, o)
	return nil
}

var errSMTPDown = errors.New("mail provider unavailable")

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "mate-imperial", Name: "Mate Imperial", Price: decimal.NewFromInt(12500), Category: "mates"},
		{ID: "bombilla-pico-loro", Name: "Bombilla Pico de Loro", Price: decimal.NewFromInt(4200), Category: "bombillas"},
	}
}

type testServer struct {
	handler http.Handler
	sender  *senderMock
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	registry := cart.NewRegistry(persistence.NewMemoryKV(), 20*time.Minute, cart.WithRegistryLogger(discard))
	t.Cleanup(func() { _ = registry.Close() })

	sender := &senderMock{}
	h := NewRouter(RouterConfig{
		Catalog:        &catalogMock{products: testProducts()},
		Carts:          registry,
		Checkout:       checkout.NewService(sender, nil, discard),
		Logger:         discard,
		RequestTimeout: 5 * time.Second,
	})

	return &testServer{handler: h, sender: sender}
}

// do sends a request and keeps the session cookie the server hands out.
func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			s.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
