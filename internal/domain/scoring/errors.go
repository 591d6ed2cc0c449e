package scoring

import "errors"

// ErrInvalidWeights is returned when a weight table cannot be used.
var ErrInvalidWeights = errors.New("invalid scoring weights")
