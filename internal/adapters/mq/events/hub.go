// Package events fans session progress events out to subscribers.
//
// The Hub delivers in process over channels. Redis pub/sub mirrors the same
// stream for consumers in other processes.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultBuffer = 64
)

// Publisher accepts progress events.
type Publisher interface {
	Publish(ctx context.Context, e model.Event) error
}

// NewEvent stamps a fresh event for a session.
func NewEvent(sessionID string, kind model.EventKind, payload any, at time.Time) model.Event {
	return model.Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Kind:      kind,
		Payload:   payload,
		At:        at,
	}
}

type subscriber struct {
	ch chan model.Event
}

// Hub is an in-process Publisher with per-session subscriptions. Slow
// subscribers lose their oldest buffered events; the terminal event is always
// delivered and closes every subscription of its session.
type Hub struct {
	mu      sync.Mutex
	subs    map[string]map[*subscriber]struct{}
	closed  bool
	buffer  int
	mirrors []Publisher
	log     logger.Logger
}

// NewHub creates a Hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: defaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Get().Named("events")
	}
	return h
}

// Subscribe returns the event stream of one session and a func that ends
// the subscription. The channel is closed after the terminal event, on
// unsubscribe or when the hub closes.
func (h *Hub) Subscribe(sessionID string) (<-chan model.Event, func()) {
	s := &subscriber{ch: make(chan model.Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s.ch, func() {}
	}
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[sessionID] = set
	}
	set[s] = struct{}{}

	var once sync.Once
	return s.ch, func() {
		once.Do(func() { h.remove(sessionID, s) })
	}
}

func (h *Hub) remove(sessionID string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sessionID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.ch)
	if len(set) == 0 {
		delete(h.subs, sessionID)
	}
}

// Subscribers is the number of live subscriptions for a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

// Publish delivers e to the session's subscribers and mirrors. Mirror
// failures are returned but never block local delivery.
func (h *Hub) Publish(ctx context.Context, e model.Event) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	set := h.subs[e.SessionID]
	for s := range set {
		deliver(s.ch, e)
		if e.Terminal() {
			close(s.ch)
		}
	}
	if e.Terminal() {
		delete(h.subs, e.SessionID)
	}
	h.mu.Unlock()

	metrics.RecordEventPublished(string(e.Kind))

	var errs []error
	for _, m := range h.mirrors {
		if err := m.Publish(ctx, e); err != nil {
			metrics.RecordErrorByComponent("events", "mirror")
			h.log.Warn(ctx, "mirror publish failed",
				logger.String("session", e.SessionID),
				logger.String("kind", string(e.Kind)),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// deliver never blocks: when the buffer is full the oldest event is dropped.
func deliver(ch chan model.Event, e model.Event) {
	for {
		select {
		case ch <- e:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close ends every subscription. Later publishes fail with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, id)
	}
}
