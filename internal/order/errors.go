package order

import "errors"

var (
	// ErrInvalidState: the operation is not allowed in the current state,
	// e.g. ordering an empty cart.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput: checkout data failed shape validation.
	ErrInvalidInput = errors.New("invalid checkout input")
	// ErrPersistence: reading or writing the order history failed.
	ErrPersistence = errors.New("order history storage failed")
	ErrNotFound    = errors.New("order not found")
)
