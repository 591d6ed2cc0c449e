package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrUnavailable  = errors.New("session store unavailable")
)
