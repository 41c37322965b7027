package checkout

import "errors"

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionInProgress = errors.New("an order submission is already in progress")
	ErrSubmissionFailed     = errors.New("order submission failed")
)
