package cart

import (
	"time"

	"github.com/SantiagoTucci/circulo-matero/internal/domain"
)

// Action is an intent dispatched into a Store.
type Action interface {
	apply(state domain.CartState, now time.Time) (domain.CartState, bool)
}

type AddItem struct {
	Product domain.Product
}

type SetQuantity struct {
	ProductID string
	Quantity  int
}

type RemoveItem struct {
	ProductID string
}

type ClearCart struct{}

type ToggleOpen struct{}

type SetOpen struct {
	Open bool
}

type Restore struct {
	State domain.CartState
}

// Reduce computes the state that follows action. It never mutates state and
// reports false when the action left the cart unchanged.
func Reduce(state domain.CartState, action Action, now time.Time) (domain.CartState, bool) {
	if action == nil {
		return state, false
	}
	return action.apply(state, now.UTC())
}

func (a AddItem) apply(state domain.CartState, now time.Time) (domain.CartState, bool) {
	if a.Product.ID == "" || a.Product.Price.IsNegative() {
		return state, false
	}

	next := state.Clone()
	if i := next.IndexOf(a.Product.ID); i >= 0 {
		next.Lines[i].Quantity++
	} else {
		next.Lines = append(next.Lines, domain.CartLine{
			ProductID: a.Product.ID,
			Name:      a.Product.Name,
			UnitPrice: a.Product.Price,
			Quantity:  1,
		})
	}
	next.LastModified = now
	return next, true
}

func (a SetQuantity) apply(state domain.CartState, now time.Time) (domain.CartState, bool) {
	if a.Quantity <= 0 {
		return RemoveItem{ProductID: a.ProductID}.apply(state, now)
	}

	i := state.IndexOf(a.ProductID)
	if i < 0 || state.Lines[i].Quantity == a.Quantity {
		return state, false
	}

	next := state.Clone()
	next.Lines[i].Quantity = a.Quantity
	next.LastModified = now
	return next, true
}

func (a RemoveItem) apply(state domain.CartState, now time.Time) (domain.CartState, bool) {
	i := state.IndexOf(a.ProductID)
	if i < 0 {
		return state, false
	}

	next := state.Clone()
	next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
	next.LastModified = now
	return next, true
}

func (ClearCart) apply(state domain.CartState, now time.Time) (domain.CartState, bool) {
	if state.IsEmpty() {
		return state, false
	}

	next := state.Clone()
	next.Lines = []domain.CartLine{}
	next.LastModified = now
	return next, true
}

// Open/close is panel state only and does not refresh LastModified.
func (ToggleOpen) apply(state domain.CartState, _ time.Time) (domain.CartState, bool) {
	next := state.Clone()
	next.IsOpen = !state.IsOpen
	return next, true
}

func (a SetOpen) apply(state domain.CartState, _ time.Time) (domain.CartState, bool) {
	if state.IsOpen == a.Open {
		return state, false
	}
	next := state.Clone()
	next.IsOpen = a.Open
	return next, true
}

func (a Restore) apply(_ domain.CartState, _ time.Time) (domain.CartState, bool) {
	next := a.State.Clone()
	if next.Lines == nil {
		next.Lines = []domain.CartLine{}
	}
	return next, true
}
