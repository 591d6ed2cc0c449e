package worker

import (
	"time"

	"github.com/okian/jobscout/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithLimiter shares a per-source limiter between workers.
func WithLimiter(l *Limiter) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.limiter = l
		}
	}
}

// WithSourceDelay keeps a source slot for d after each task so requests to
// one platform are spaced out.
func WithSourceDelay(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.delay = d
		}
	}
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithPerSourceLimit caps how many tasks of one source run at once.
func WithPerSourceLimit(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.perSource = n
		}
	}
}

// WithWorkerOptions applies opts to every worker of the pool.
func WithWorkerOptions(opts ...Option) PoolOption {
	return func(p *Pool) {
		p.workerOpts = append(p.workerOpts, opts...)
	}
}
