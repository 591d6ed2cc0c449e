package api

import (
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
)

// Default server configuration constants.
const (
	defaultMaxListLimit = 100
	defaultListLimit    = 20
	defaultMaxBodyBytes = 1 << 20
)

type serverConfig struct {
	defaults     model.Parameters
	maxListLimit int
	maxBodyBytes int64
	log          logger.Logger
}

// Option configures a Server.
type Option func(*serverConfig)

// WithDefaults fills parameters a search request leaves out.
func WithDefaults(p model.Parameters) Option {
	return func(c *serverConfig) {
		c.defaults = p
	}
}

// WithMaxListLimit caps the limit accepted by GET /searches.
func WithMaxListLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxListLimit = n
		}
	}
}

// WithMaxBodyBytes caps the size of a search request body.
func WithMaxBodyBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.log = l
		}
	}
}
