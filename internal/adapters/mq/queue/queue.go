// Package queue holds source tasks waiting for a worker.
//
// The queue is shared by every running session. Enqueue never blocks: a full
// or closed queue rejects the task and the caller accounts for it.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/jobscout/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10_000
)

// Task is one unit of source work.
type Task struct {
	// ID identifies the task in logs, e.g. "<session>/3".
	ID string
	// Source is the adapter name; workers cap concurrency per source.
	Source string
	// Run does the work. It receives the worker context, which is cancelled
	// on pool shutdown.
	Run func(ctx context.Context)
	// Live reports whether the task is still wanted. Nil means always.
	Live func() bool
}

// Wanted reports whether a worker should still run t.
func (t Task) Wanted() bool {
	return t.Live == nil || t.Live()
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a task. It fails with ErrFull or ErrClosed.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue returns a channel of tasks. The channel is closed when the
	// queue is closed and drained, or when ctx is done.
	Dequeue(ctx context.Context) <-chan Task

	// Len returns the current number of queued tasks.
	Len(ctx context.Context) int

	// Close stops accepting tasks. Queued tasks can still be dequeued.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	tasks    chan Task
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.tasks = make(chan Task, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Enqueue adds a task to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return fmt.Errorf("%w: task %s", ErrClosed, t.ID)
	}

	select {
	case q.tasks <- t:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return fmt.Errorf("%w: task %s", ErrFull, t.ID)
	}
}

// Dequeue returns a channel that receives tasks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Task {
	out := make(chan Task)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-q.tasks:
				if !ok {
					return
				}
				select {
				case out <- t:
					metrics.RecordQueueDequeue()
					q.updateGauges()
				case <-ctx.Done():
					// Give the task back if the consumer left; drop it when
					// the queue no longer accepts work.
					if err := q.Enqueue(context.Background(), t); err != nil {
						metrics.RecordErrorByComponent("queue", "dropped")
					}
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued tasks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.updateGauges()
	return len(q.tasks)
}

// Close stops accepting tasks.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.tasks)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.tasks)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
