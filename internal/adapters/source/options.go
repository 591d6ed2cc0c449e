package source

import (
	"time"

	"github.com/okian/jobscout/pkg/logger"
)

// ChainOption applies a configuration option to a Chain.
type ChainOption func(*Chain)

// WithAcceptEmpty makes the first strategy that completes without error end
// the chain even when it found nothing.
func WithAcceptEmpty(accept bool) ChainOption {
	return func(c *Chain) {
		c.acceptEmpty = accept
	}
}

// WithStrategyTimeout sets the timeout of strategies that have none.
func WithStrategyTimeout(d time.Duration) ChainOption {
	return func(c *Chain) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the chain logger.
func WithLogger(l logger.Logger) ChainOption {
	return func(c *Chain) {
		if l != nil {
			c.log = l
		}
	}
}
