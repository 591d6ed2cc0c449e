package repository

import "time"

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxSessions bounds the memory store; the oldest sessions are evicted
// first. Zero keeps everything.
func WithMaxSessions(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets how long session snapshots live in Redis.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix changes the Redis key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}
