package service

import (
	"time"

	"github.com/okian/jobscout/internal/adapters/mq/events"
	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/adapters/source"
	"github.com/okian/jobscout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTuning sets the matching tables and thresholds.
func WithTuning(t Tuning) Option {
	return func(s *Service) {
		s.tuning = t
	}
}

// WithAdapters sets the source adapters, in the order tasks are planned.
func WithAdapters(adapters ...source.Adapter) Option {
	return func(s *Service) {
		s.adapters = adapters
	}
}

// WithStore sets the session store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMirror publishes every event to p in addition to local subscribers.
func WithMirror(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.hubOpts = append(s.hubOpts, events.WithMirror(p))
		}
	}
}

// WithEventBuffer sets the per-subscriber event buffer.
func WithEventBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.hubOpts = append(s.hubOpts, events.WithBuffer(n))
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued tasks.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPerSourceConcurrency caps concurrent tasks per source.
func WithPerSourceConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.perSource = n
		}
	}
}

// WithRetryDelay keeps a source slot busy for d after each task.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

// WithDedupeSize bounds the per-session task seen-set.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithScoreCacheSize bounds the shared score cache.
func WithScoreCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.scoreCacheSize = size
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
