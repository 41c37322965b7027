package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product in the cart. Name and UnitPrice are a snapshot of the
// product taken when the line was created.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type CartState struct {
	Lines        []CartLine `json:"lines"`
	IsOpen       bool       `json:"is_open"`
	LastModified time.Time  `json:"last_modified"`
}

// EmptyCart returns a cart with no lines, stamped at now.
func EmptyCart(now time.Time) CartState {
	return CartState{
		Lines:        []CartLine{},
		LastModified: now.UTC(),
	}
}

// Clone returns a copy that does not share the Lines backing array.
func (s CartState) Clone() CartState {
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	s.Lines = lines
	return s
}

func (s CartState) IndexOf(productID string) int {
	for i, line := range s.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s CartState) IsEmpty() bool {
	return len(s.Lines) == 0
}

// ItemCount is the sum of all line quantities.
func (s CartState) ItemCount() int {
	n := 0
	for _, line := range s.Lines {
		n += line.Quantity
	}
	return n
}
