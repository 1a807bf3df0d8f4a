package domain

import "errors"

var (
	// ErrValidation marks malformed print specifications or rule sets.
	ErrValidation = errors.New("invalid print specification")

	// ErrRuleSetNotFound is returned when no pricing rule set row exists.
	ErrRuleSetNotFound = errors.New("pricing rule set not found")
)
