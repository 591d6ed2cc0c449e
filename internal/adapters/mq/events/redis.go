package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

const (
	defaultChannelPrefix = "jobscout:events:"
	defaultSeenSize      = 1_024
)

func newRedisConfig(opts []RedisOption) redisConfig {
	c := redisConfig{
		prefix: defaultChannelPrefix,
		buffer: defaultBuffer,
		seen: func() dedupe.Deduper {
			return dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(defaultSeenSize))
		},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// RedisPublisher publishes events as JSON on a per-session channel.
type RedisPublisher struct {
	client redis.UniversalClient
	cfg    redisConfig
}

// NewRedisPublisher creates a publisher on client.
func NewRedisPublisher(client redis.UniversalClient, opts ...RedisOption) *RedisPublisher {
	return &RedisPublisher{client: client, cfg: newRedisConfig(opts)}
}

// Channel is the pub/sub channel of a session.
func (p *RedisPublisher) Channel(sessionID string) string {
	return p.cfg.prefix + sessionID
}

// Publish sends e to the session channel.
func (p *RedisPublisher) Publish(ctx context.Context, e model.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	if err := p.client.Publish(ctx, p.Channel(e.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", e.ID, err)
	}
	return nil
}

// RedisSubscriber reads a session's events from Redis pub/sub.
type RedisSubscriber struct {
	client redis.UniversalClient
	cfg    redisConfig
	log    logger.Logger
}

// NewRedisSubscriber creates a subscriber on client.
func NewRedisSubscriber(client redis.UniversalClient, opts ...RedisOption) *RedisSubscriber {
	return &RedisSubscriber{
		client: client,
		cfg:    newRedisConfig(opts),
		log:    logger.Get().Named("events.redis"),
	}
}

// Subscribe streams events of one session until the terminal event arrives
// or ctx is done. Redelivered events (same ID) are dropped. Payloads decode
// as generic JSON values.
func (s *RedisSubscriber) Subscribe(ctx context.Context, sessionID string) (<-chan model.Event, error) {
	ps := s.client.Subscribe(ctx, s.cfg.prefix+sessionID)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", sessionID, err)
	}

	out := make(chan model.Event, s.cfg.buffer)
	seen := s.cfg.seen()
	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e model.Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					s.log.Warn(ctx, "dropping malformed event",
						logger.String("channel", msg.Channel),
						logger.Error(fmt.Errorf("%w: %v", ErrDecode, err)),
					)
					continue
				}
				if seen.SeenAndRecord(ctx, e.ID) {
					metrics.RecordEventDuplicate()
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
				if e.Terminal() {
					return
				}
			}
		}
	}()
	return out, nil
}
