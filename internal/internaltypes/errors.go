package internaltypes

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("external service unavailable")
	ErrInvalidInput = errors.New("invalid input")
	ErrSlotTaken    = errors.New("slot no longer available")
)
