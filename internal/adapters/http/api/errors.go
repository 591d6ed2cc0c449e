package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrStreaming  = errors.New("streaming unsupported")
)

// wrapKind tags err with an API kind and the failing operation.
func wrapKind(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
