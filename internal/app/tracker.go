package service

import (
	"context"
	"sync"
)

// taskTracker counts the tasks of one session that have not finished. Once
// stopped, queued tasks are written off at once; only running tasks are
// still waited for.
type taskTracker struct {
	mu      sync.Mutex
	queued  int
	running int
	dropped bool
	stopped bool
	closed  bool
	idle    chan struct{}
}

func newTaskTracker(n int) *taskTracker {
	t := &taskTracker{queued: n, idle: make(chan struct{})}
	t.settleLocked()
	return t
}

// live reports whether queued tasks of this session may still run.
func (t *taskTracker) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// begin reports whether a dequeued task should run. A false return already
// accounts for the task.
func (t *taskTracker) begin(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.queued--
	if ctx.Err() != nil {
		t.dropped = true
		t.settleLocked()
		return false
	}
	t.running++
	return true
}

// end marks a running task finished.
func (t *taskTracker) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running--
	t.settleLocked()
}

// skip accounts for a task that never reached the queue or was discarded by
// a stopping pool.
func (t *taskTracker) skip() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.queued--
	}
	t.settleLocked()
}

// stop writes off every queued task and reports whether any work was cut.
// idle closes as soon as the running tasks end.
func (t *taskTracker) stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cut := t.dropped || t.queued > 0 || t.running > 0
	t.stopped = true
	t.queued = 0
	t.settleLocked()
	return cut
}

func (t *taskTracker) settleLocked() {
	if !t.closed && t.queued <= 0 && t.running == 0 {
		t.closed = true
		close(t.idle)
	}
}
