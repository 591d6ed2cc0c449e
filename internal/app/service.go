// Package service runs search sessions: it validates requests, schedules
// source tasks on a shared worker pool and serves session state to the API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/jobscout/internal/adapters/mq/events"
	"github.com/okian/jobscout/internal/adapters/mq/queue"
	"github.com/okian/jobscout/internal/adapters/mq/worker"
	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/adapters/source"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/session"
	"github.com/okian/jobscout/internal/domain/types"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize      = 10_000
	defaultPerSource      = 2
	defaultDedupeSize     = 1_000
	defaultScoreCacheSize = 10_000
)

// run is a session in flight.
type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Service implements the API dependencies for search sessions.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	hub          *events.Hub
	taskQueue    *queue.InMemoryQueue
	workerPool   *worker.Pool
	orchestrator *Orchestrator
	adapters     []source.Adapter
	hubOpts      []events.Option

	// Configuration
	tuning         Tuning
	workerCount    int
	queueSize      int
	perSource      int
	retryDelay     time.Duration
	dedupeSize     int
	scoreCacheSize int
	now            func() time.Time

	// State
	started  bool
	stopping bool
	baseCtx  context.Context
	stopAll  context.CancelFunc
	runs     map[string]*run
	wg       sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service. Without WithStore sessions live in memory.
func New(opts ...Option) *Service {
	s := &Service{
		tuning:         DefaultTuning(),
		workerCount:    runtime.NumCPU() * 4,
		queueSize:      defaultQueueSize,
		perSource:      defaultPerSource,
		dedupeSize:     defaultDedupeSize,
		scoreCacheSize: defaultScoreCacheSize,
		now:            time.Now,
		runs:           make(map[string]*run),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start builds the queue, the worker pool and the event hub.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.stopping = false
	s.baseCtx, s.stopAll = context.WithCancel(context.WithoutCancel(ctx))

	s.hub = events.NewHub(s.hubOpts...)
	s.taskQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.workerPool = worker.NewPool(s.workerCount, s.taskQueue,
		worker.WithPerSourceLimit(s.perSource),
		worker.WithWorkerOptions(worker.WithSourceDelay(s.retryDelay)),
	)
	s.workerPool.Start(s.baseCtx)

	s.orchestrator = &Orchestrator{
		extractor:  s.tuning.extractor(),
		expander:   s.tuning.expander(),
		merger:     s.tuning.merger(),
		scorer:     s.tuning.scorer(s.scoreCacheSize),
		adapters:   s.adapters,
		queue:      s.taskQueue,
		publisher:  s.hub,
		store:      s.store,
		dedupeSize: s.dedupeSize,
		now:        s.now,
		log:        s.logger.Named("orchestrator"),
	}

	s.started = true
	s.logger.Info(ctx, "search service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("per_source", s.perSource),
		logger.Int("sources", len(s.adapters)),
		logger.Duration("session_timeout", s.tuning.SessionTimeout),
	)
	return nil
}

// Stop cancels running sessions, waits for them to finalize and shuts the
// worker pool down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	for _, r := range s.runs {
		r.cancel()
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping search service...")

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	var errs []error
	select {
	case <-finished:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for sessions: %w", ctx.Err()))
	}

	if err := s.workerPool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.stopAll()
	s.hub.Close()

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	s.logger.Info(context.Background(), "search service stopped")
	return errors.Join(errs...)
}

// Submit validates params, stores a pending session and starts running it
// in the background. Invalid parameters never create a session.
func (s *Service) Submit(ctx context.Context, params model.Parameters, resume string) (*session.Session, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stopping:
		return nil, ErrStopped
	case !s.started:
		return nil, ErrNotStarted
	}

	sess := session.New(params, s.now())
	if err := s.store.Save(ctx, sess.Clone()); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.RecordSessionStatus(string(session.StatusPending))

	runCtx, cancel := context.WithTimeout(s.baseCtx, s.tuning.SessionTimeout)
	r := &run{cancel: cancel, done: make(chan struct{})}
	s.runs[sess.ID] = r
	s.wg.Add(1)

	snapshot := sess.Clone()
	go s.execute(runCtx, r, sess, resume)

	s.logger.Info(ctx, "session submitted",
		logger.String("session", sess.ID),
		logger.String("location", params.Location),
		logger.String("mode", string(params.ScraperMode)),
	)
	return snapshot, nil
}

func (s *Service) execute(ctx context.Context, r *run, sess *session.Session, resume string) {
	defer s.wg.Done()
	defer close(r.done)
	defer r.cancel()

	metrics.AddActiveSessions(1)
	started := time.Now()

	final := s.orchestrator.Run(ctx, sess, resume)

	metrics.AddActiveSessions(-1)
	metrics.RecordSessionDuration(time.Since(started))
	metrics.RecordSessionStatus(string(final.Status))

	s.mu.Lock()
	delete(s.runs, sess.ID)
	s.mu.Unlock()
}

// Get returns a snapshot of a session.
func (s *Service) Get(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, err
}

// List returns up to limit sessions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*session.Session, error) {
	return s.store.List(ctx, limit)
}

// Results returns the ranked export rows of a session. A session that has
// not completed yields no rows.
func (s *Service) Results(ctx context.Context, id string) ([]types.ResultRow, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return types.Rows(sess.Results), nil
}

// Cancel stops scheduling new tasks for a running session. The session
// still completes with what was collected. Cancelling a finished session is
// a no-op.
func (s *Service) Cancel(ctx context.Context, id string) error {
	s.mu.RLock()
	r, ok := s.runs[id]
	s.mu.RUnlock()
	if ok {
		r.cancel()
		s.logger.Info(ctx, "session cancel requested", logger.String("session", id))
		return nil
	}
	_, err := s.Get(ctx, id)
	return err
}

// Wait blocks until the session is terminal or ctx is done and returns its
// latest snapshot.
func (s *Service) Wait(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	r, ok := s.runs[id]
	s.mu.RUnlock()
	if ok {
		select {
		case <-r.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.Get(ctx, id)
}

// Subscribe streams the progress events of a session. For a session that
// is already terminal the channel is closed at once.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan model.Event, func(), error) {
	s.mu.RLock()
	hub := s.hub
	s.mu.RUnlock()
	if hub == nil {
		return nil, nil, ErrNotStarted
	}

	ch, unsubscribe := hub.Subscribe(id)
	sess, err := s.Get(ctx, id)
	if err != nil {
		unsubscribe()
		return nil, nil, err
	}
	if sess.Status.Terminal() {
		unsubscribe()
	}
	return ch, unsubscribe, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	names := make([]string, 0, len(s.adapters))
	for _, a := range s.adapters {
		names = append(names, a.Name())
	}
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"perSource":      s.perSource,
		"sources":        names,
		"activeSessions": len(s.runs),
	}

	if s.started {
		queueLen := s.taskQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["storedSessions"] = s.store.Count(ctx)
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
