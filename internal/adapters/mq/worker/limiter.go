package worker

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds concurrent work per source with one weighted semaphore per
// source name.
type Limiter struct {
	limit int64
	mu    sync.Mutex
	sems  map[string]*semaphore.Weighted
}

// NewLimiter allows n concurrent tasks per source. n < 1 means 1.
func NewLimiter(n int) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{limit: int64(n), sems: make(map[string]*semaphore.Weighted)}
}

// Acquire blocks until source has a free slot or ctx is done.
func (l *Limiter) Acquire(ctx context.Context, source string) error {
	return l.sem(source).Acquire(ctx, 1)
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release(source string) {
	l.sem(source).Release(1)
}

func (l *Limiter) sem(source string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[source]
	if !ok {
		s = semaphore.NewWeighted(l.limit)
		l.sems[source] = s
	}
	return s
}
