package domain

import "errors"

// ErrInsufficientFunds is returned when a debit would drive the balance
// below zero. Never clamped silently.
var ErrInsufficientFunds = errors.New("insufficient wallet funds")
