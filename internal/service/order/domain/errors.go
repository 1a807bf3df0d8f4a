package domain

import "errors"

var (
	// ErrOrderNotFound is returned for unknown order ids.
	ErrOrderNotFound = errors.New("order not found")

	// ErrConflict is returned when an operation contradicts the order's
	// current state, e.g. editing a delivered order.
	ErrConflict = errors.New("operation conflicts with order state")
)
