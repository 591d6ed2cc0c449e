package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/jobscout/internal/domain/session"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default Redis store configuration constants.
const (
	defaultTTL       = 24 * time.Hour
	defaultKeyPrefix = "jobscout:"
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping failed: %v", ErrUnavailable, err)
	}
	return client, nil
}

// RedisStore keeps JSON session snapshots in Redis with a TTL. A sorted set
// indexes session IDs by creation time for List.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	log    logger.Logger
}

// NewRedisStore creates a store on client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    defaultTTL,
		prefix: defaultKeyPrefix,
		log:    logger.Get().Named("repository.redis"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string { return s.prefix + "session:" + id }

func (s *RedisStore) index() string { return s.prefix + "sessions" }

// Save writes the snapshot and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(sess.ID), payload, s.ttl)
		p.ZAdd(ctx, s.index(), redis.Z{Score: float64(sess.CreatedAt.UnixNano()), Member: sess.ID})
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", "save")
		return fmt.Errorf("%w: save session %s: %v", ErrUnavailable, sess.ID, err)
	}
	return nil
}

// Get reads one snapshot.
func (s *RedisStore) Get(ctx context.Context, id string) (*session.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		metrics.RecordErrorByComponent("repository", "get")
		return nil, fmt.Errorf("%w: get session %s: %v", ErrUnavailable, id, err)
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

// List returns up to limit live sessions, newest first. Index entries whose
// snapshot expired are pruned on the way.
func (s *RedisStore) List(ctx context.Context, limit int) ([]*session.Session, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	ids, err := s.client.ZRevRange(ctx, s.index(), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", ErrUnavailable, err)
	}

	out := make([]*session.Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			if err := s.client.ZRem(ctx, s.index(), id).Err(); err != nil {
				s.log.Warn(ctx, "prune expired session", logger.String("session", id), logger.Error(err))
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// Count returns the number of indexed sessions, expired ones included until
// the next List prunes them. Errors count as zero.
func (s *RedisStore) Count(ctx context.Context) int {
	n, err := s.client.ZCard(ctx, s.index()).Result()
	if err != nil {
		s.log.Warn(ctx, "count sessions", logger.Error(err))
		return 0
	}
	return int(n)
}
