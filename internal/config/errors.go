package config

import "errors"

var (
	// ErrInvalidConfig wraps every Validate failure.
	ErrInvalidConfig = errors.New("config: invalid setting")
	// ErrLoadConfig wraps file, parse and env-layer failures in Load.
	ErrLoadConfig = errors.New("config: load failed")
)
