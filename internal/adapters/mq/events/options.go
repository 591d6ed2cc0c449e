package events

import (
	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/pkg/logger"
)

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscriber channel buffer.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithMirror forwards every published event to p as well.
func WithMirror(p Publisher) Option {
	return func(h *Hub) {
		if p != nil {
			h.mirrors = append(h.mirrors, p)
		}
	}
}

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// RedisOption applies a configuration option to the Redis publisher and
// subscriber.
type RedisOption func(*redisConfig)

type redisConfig struct {
	prefix string
	buffer int
	seen   func() dedupe.Deduper
}

// WithChannelPrefix changes the pub/sub channel prefix.
func WithChannelPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithSubscriberBuffer sets the buffer of channels returned by Subscribe.
func WithSubscriberBuffer(n int) RedisOption {
	return func(c *redisConfig) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithSeenSet sets the factory of per-subscription seen-sets used to drop
// redelivered events.
func WithSeenSet(factory func() dedupe.Deduper) RedisOption {
	return func(c *redisConfig) {
		if factory != nil {
			c.seen = factory
		}
	}
}
