package queue

import "errors"

// Sentinel errors for task scheduling.
var (
	ErrClosed = errors.New("queue closed")
	ErrFull   = errors.New("queue full")
)
