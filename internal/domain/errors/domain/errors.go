// Package domain provides domain-specific error definitions and utilities.
package domain

import "errors"

// Input errors. A malformed record is fatal for that record only.
var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrMissingSender    = errors.New("sender is required")
	ErrMissingTimestamp = errors.New("timestamp is required")
)

// Configuration errors. The classifier cannot run without its rule tables.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrEmptyRuleSet  = errors.New("rule set is empty")
)

// General domain errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidValue = errors.New("invalid value")
)
