// Package dedupe merges duplicate postings and tracks already-seen keys.
package dedupe

import (
	"context"
	"sync"
)

// Default seen-set configuration constants.
const (
	defaultMaxSize = 50_000
)

// Deduper records seen keys so work is done at most once.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it if
	// not. It returns true when key had already been recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so it can be recorded again.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// seenSet is a bounded set with first-in first-out eviction. A ring of keys
// remembers insertion order; evicted slots are reused.
type seenSet struct {
	mu      sync.Mutex
	index   map[string]int // key -> ring slot
	ring    []string
	head    int // next slot to write
	full    bool
	maxSize int
}

// NewInMemoryDeduper creates a seen-set. With WithMaxSize(n <= 0) it never
// evicts.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &seenSet{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.index = make(map[string]int)
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *seenSet) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.index[key]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.index[key] = -1
		return false
	}
	if d.full {
		if old := d.ring[d.head]; old != "" {
			delete(d.index, old)
		}
	}
	d.ring[d.head] = key
	d.index[key] = d.head
	d.head++
	if d.head == d.maxSize {
		d.head = 0
		d.full = true
	}
	return false
}

func (d *seenSet) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.index[key]
	if !ok {
		return
	}
	delete(d.index, key)
	if slot >= 0 {
		// Leave a hole; eviction skips empty slots.
		d.ring[slot] = ""
	}
}

func (d *seenSet) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.index))
}
