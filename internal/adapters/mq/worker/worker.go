// Package worker runs queued source tasks on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/jobscout/internal/adapters/mq/queue"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	defaultPerSource        = 2
	poolShutdownTimeout     = 30 * time.Second
)

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker processes tasks from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current task.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	limiter *Limiter
	delay   time.Duration
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.limiter == nil {
		w.limiter = NewLimiter(defaultPerSource)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "error processing task", logger.String("task", t.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs one task inside its source slot. Panics are recovered so one
// bad task cannot take the worker down. Tasks no longer wanted are dropped
// without holding the slot or waiting out the source delay.
func (w *InMemoryWorker) process(ctx context.Context, t queue.Task) (err error) {
	if !t.Wanted() {
		w.drop(ctx, t)
		return nil
	}
	if err := w.limiter.Acquire(ctx, t.Source); err != nil {
		// Pool is stopping; the task still reports completion so waiters
		// are not left hanging.
		t.Run(ctx)
		return fmt.Errorf("acquire %s slot: %w", t.Source, err)
	}
	if !t.Wanted() {
		w.limiter.Release(t.Source)
		w.drop(ctx, t)
		return nil
	}
	defer w.release(ctx, t.Source)

	start := time.Now()
	metrics.AddWorkerBusy(1)
	defer func() {
		metrics.AddWorkerBusy(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		if r := recover(); r != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "panic")
			err = fmt.Errorf("task %s panicked: %v", t.ID, r)
		}
	}()

	t.Run(ctx)
	return nil
}

func (w *InMemoryWorker) drop(ctx context.Context, t queue.Task) {
	metrics.RecordSourceTask(t.Source, "dropped")
	w.logger.Debug(ctx, "task dropped", logger.String("task", t.ID))
}

func (w *InMemoryWorker) release(ctx context.Context, source string) {
	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	w.limiter.Release(source)
}

// Pool manages multiple workers sharing one queue and one per-source limiter.
type Pool struct {
	workers    []*InMemoryWorker
	queue      Queue
	limiter    *Limiter
	perSource  int
	workerOpts []Option
	cancel     context.CancelFunc

	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 picks a CPU based default.
func NewPool(workerCount int, q Queue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     q,
		perSource: defaultPerSource,
		logger:    logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.limiter = NewLimiter(p.perSource)

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, p.workerOpts...)
		wopts = append(wopts, WithLimiter(p.limiter))
		p.workers[i] = NewInMemoryWorker(q, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started",
		logger.Int("workers", len(p.workers)),
		logger.Int("per_source", p.perSource),
	)
}

// Shutdown closes the queue, lets workers drain it and waits for them.
// Workers still busy when ctx (or the pool timeout) expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
		if timedOut {
			break
		}
	}
	if p.cancel != nil {
		p.cancel()
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
