package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need a started Service.
	ErrNotStarted = errors.New("service not started")

	// ErrStopped rejects new sessions once Stop has begun.
	ErrStopped = errors.New("service stopped")

	// ErrNotFound is returned for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)
