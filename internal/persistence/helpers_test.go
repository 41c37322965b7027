package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 5, 10, 18, 30, 0, 0, time.UTC)

func sampleCart() domain.CartState {
	return domain.CartState{
		Lines: []domain.CartLine{
			{ProductID: "1", Name: "Mate Imperial Premium", UnitPrice: decimal.NewFromInt(12500), Quantity: 5},
			{ProductID: "3", Name: "Mate de Cuero Liso", UnitPrice: decimal.RequireFromString("11200.50"), Quantity: 1},
		},
		IsOpen:       true,
		LastModified: baseTime,
	}
}

func assertCartEqual(t *testing.T, expected, actual domain.CartState) {
	t.Helper()
	require.Len(t, actual.Lines, len(expected.Lines))
	for i := range expected.Lines {
		e, a := expected.Lines[i], actual.Lines[i]
		assert.Equal(t, e.ProductID, a.ProductID)
		assert.Equal(t, e.Name, a.Name)
		assert.Equal(t, e.Quantity, a.Quantity)
		assert.True(t, e.UnitPrice.Equal(a.UnitPrice), "price %s != %s", e.UnitPrice, a.UnitPrice)
	}
	assert.Equal(t, expected.IsOpen, actual.IsOpen)
	assert.True(t, expected.LastModified.Equal(actual.LastModified))
}

type failingKV struct {
	err     error
	removed []string
}

func (f *failingKV) Get(context.Context, string) (string, error) { return "", f.err }
func (f *failingKV) Set(context.Context, string, string) error   { return f.err }
func (f *failingKV) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return f.err
}

var errStoreDown = errors.New("quota exceeded")
