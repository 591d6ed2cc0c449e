package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/jobscout/internal/adapters/mq/events"
	"github.com/okian/jobscout/internal/adapters/mq/queue"
	"github.com/okian/jobscout/internal/adapters/repository"
	"github.com/okian/jobscout/internal/adapters/source"
	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/location"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/profile"
	"github.com/okian/jobscout/internal/domain/ranking"
	"github.com/okian/jobscout/internal/domain/scoring"
	"github.com/okian/jobscout/internal/domain/session"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default orchestration constants.
const (
	maxQuerySkills   = 3
	maxQueryKeywords = 3
)

// Orchestrator drives one session from pending to a terminal state.
type Orchestrator struct {
	extractor  *profile.Extractor
	expander   *location.Expander
	merger     *dedupe.Merger
	scorer     scoring.Scorer
	adapters   []source.Adapter
	queue      queue.Queue
	publisher  events.Publisher
	store      repository.Store
	dedupeSize int
	now        func() time.Time
	log        logger.Logger
}

// task is one scheduled (source, variant) search with its position in the
// session plan.
type task struct {
	index   int
	adapter source.Adapter
	query   model.SearchQuery
}

// runState owns the session record while it runs. Every change is saved.
type runState struct {
	mu        sync.Mutex
	sess      *session.Session
	collected [][]model.RawPosting
	store     repository.Store
	log       logger.Logger
}

func (r *runState) update(ctx context.Context, fn func(s *session.Session) error) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := fn(r.sess); err != nil {
		return nil, err
	}
	snap := r.sess.Clone()
	if err := r.store.Save(context.WithoutCancel(ctx), snap); err != nil {
		r.log.Warn(ctx, "failed to save session",
			logger.String("session", snap.ID),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("orchestrator", "store")
	}
	return snap, nil
}

func (r *runState) flatten() []model.RawPosting {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.RawPosting
	for _, batch := range r.collected {
		out = append(out, batch...)
	}
	return out
}

// Run executes the session. ctx carries the caller's cancellation and the
// session deadline; either ends scheduling and finalizes with what was
// collected. The returned session is terminal.
func (o *Orchestrator) Run(ctx context.Context, sess *session.Session, resume string) (final *session.Session) {
	st := &runState{sess: sess, store: o.store, log: o.log}

	defer func() {
		if r := recover(); r != nil {
			o.log.Error(ctx, "orchestrator panic",
				logger.String("session", sess.ID),
				logger.Any("panic", r),
			)
			metrics.RecordErrorByComponent("orchestrator", "panic")
			final = o.fail(ctx, st, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if _, err := st.update(ctx, func(s *session.Session) error { return s.Start(o.now()) }); err != nil {
		o.log.Error(ctx, "session cannot start", logger.String("session", sess.ID), logger.Error(err))
		return sess.Clone()
	}

	prof, err := o.extractor.Extract(resume)
	if err != nil {
		return o.fail(ctx, st, err.Error())
	}

	params := sess.Params
	variants, err := o.expander.Expand(params.Location, params.IncludeRemote)
	if errors.Is(err, model.ErrUnknownLocation) {
		variants = location.Opaque(params.Location, params.IncludeRemote)
		diag := model.Diagnostic{Source: "location", Strategy: "expand", Reason: err.Error(), Location: params.Location}
		_, _ = st.update(ctx, func(s *session.Session) error {
			s.AddDiagnostic(diag)
			return nil
		})
		o.log.Info(ctx, "unknown location, searching it verbatim",
			logger.String("session", sess.ID),
			logger.String("location", params.Location),
		)
	} else if err != nil {
		return o.fail(ctx, st, err.Error())
	}

	tasks := o.plan(ctx, prof, variants, params.ScraperMode)
	st.collected = make([][]model.RawPosting, len(tasks))
	if _, err := st.update(ctx, func(s *session.Session) error { return s.Plan(len(tasks)) }); err != nil {
		return o.fail(ctx, st, err.Error())
	}
	o.publish(ctx, sess.ID, model.EventStarted, startedPayload(tasks, variants))

	cancelled := o.execute(ctx, st, tasks)

	return o.finalize(ctx, st, prof, cancelled)
}

// queryKeywords picks the search terms sent to boards: the first target
// role, else the leading skills, else the leading keywords.
func queryKeywords(p model.Profile) []string {
	switch {
	case len(p.TargetRoles) > 0:
		return []string{p.TargetRoles[0]}
	case len(p.Skills) > 0:
		return append([]string(nil), p.Skills[:min(maxQuerySkills, len(p.Skills))]...)
	default:
		return append([]string(nil), p.Keywords[:min(maxQueryKeywords, len(p.Keywords))]...)
	}
}

// plan builds tasks in adapter-major, variant-minor order, dropping repeated
// (source, variant) pairs.
func (o *Orchestrator) plan(ctx context.Context, p model.Profile, variants []model.LocationVariant, mode model.ScraperMode) []task {
	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(o.dedupeSize))
	keywords := queryKeywords(p)

	var tasks []task
	for _, a := range o.adapters {
		for _, v := range variants {
			q := model.SearchQuery{Source: a.Name(), Variant: v, Keywords: keywords, Mode: mode}
			if seen.SeenAndRecord(ctx, q.Key()) {
				continue
			}
			tasks = append(tasks, task{index: len(tasks), adapter: a, query: q})
		}
	}
	return tasks
}

func startedPayload(tasks []task, variants []model.LocationVariant) model.StartedPayload {
	p := model.StartedPayload{Tasks: len(tasks), Sources: []string{}, Variants: make([]string, 0, len(variants))}
	seen := map[string]bool{}
	for _, t := range tasks {
		if !seen[t.query.Source] {
			seen[t.query.Source] = true
			p.Sources = append(p.Sources, t.query.Source)
		}
	}
	for _, v := range variants {
		p.Variants = append(p.Variants, v.Label)
	}
	return p
}

// execute schedules every task and waits until all have finished or been
// dropped. It reports whether the session context cut the run short.
func (o *Orchestrator) execute(ctx context.Context, st *runState, tasks []task) bool {
	tr := newTaskTracker(len(tasks))

	for _, t := range tasks {
		qt := queue.Task{
			ID:     st.sess.ID + "/" + strconv.Itoa(t.index),
			Source: t.query.Source,
			Run:    o.taskFunc(ctx, st, tr, t),
			Live:   tr.live,
		}
		if err := o.queue.Enqueue(ctx, qt); err != nil {
			o.log.Warn(ctx, "task not scheduled",
				logger.String("task", qt.ID),
				logger.Error(err),
			)
			diag := model.Diagnostic{Source: t.query.Source, Strategy: "schedule", Reason: err.Error(), Location: t.query.Variant.Label}
			o.record(ctx, st, t, nil, []model.Diagnostic{diag})
			tr.skip()
		}
	}

	select {
	case <-tr.idle:
		return false
	case <-ctx.Done():
	}
	cut := tr.stop()
	<-tr.idle
	if cut {
		o.log.Info(ctx, "session cut short",
			logger.String("session", st.sess.ID),
			logger.Error(ctx.Err()),
		)
	}
	return cut
}

// taskFunc wraps one search for the worker pool. The search runs detached
// from session cancellation so an in-flight request ends on its own
// timeouts; pool shutdown still aborts it.
func (o *Orchestrator) taskFunc(sessCtx context.Context, st *runState, tr *taskTracker, t task) func(context.Context) {
	return func(workerCtx context.Context) {
		if workerCtx.Err() != nil {
			tr.skip()
			return
		}
		if !tr.begin(sessCtx) {
			return
		}
		defer tr.end()

		ctx, cancel := context.WithCancel(context.WithoutCancel(sessCtx))
		defer cancel()
		stopAfter := context.AfterFunc(workerCtx, cancel)
		defer stopAfter()

		var (
			mu    sync.Mutex
			diags []model.Diagnostic
		)
		ctx = source.WithSink(ctx, func(d model.Diagnostic) {
			mu.Lock()
			diags = append(diags, d)
			mu.Unlock()
		})

		postings := t.adapter.Search(ctx, t.query)

		mu.Lock()
		found := append([]model.Diagnostic(nil), diags...)
		mu.Unlock()
		o.record(sessCtx, st, t, postings, found)
	}
}

// record stores a finished task's postings under its plan index and
// publishes the progress step.
func (o *Orchestrator) record(ctx context.Context, st *runState, t task, postings []model.RawPosting, diags []model.Diagnostic) {
	snap, err := st.update(ctx, func(s *session.Session) error {
		st.collected[t.index] = postings
		return s.RecordTask(t.query.Source, len(postings), diags)
	})
	if err != nil {
		o.log.Warn(ctx, "task result dropped", logger.String("session", st.sess.ID), logger.Error(err))
		return
	}
	o.publish(ctx, snap.ID, model.EventSourceProgress, model.ProgressPayload{
		Source:      t.query.Source,
		Location:    t.query.Variant.Label,
		Fetched:     len(postings),
		Done:        snap.Progress.Done,
		Total:       snap.Progress.Total,
		Diagnostics: diags,
	})
}

func (o *Orchestrator) finalize(ctx context.Context, st *runState, prof model.Profile, cancelled bool) *session.Session {
	raws := st.flatten()
	canonical := o.merger.Merge(raws)

	scored := make([]model.ScoredPosting, 0, len(canonical))
	for _, c := range canonical {
		started := time.Now()
		sp := o.scorer.Score(prof, c)
		metrics.RecordScoringLatency(float64(time.Since(started).Microseconds()) / 1000)
		metrics.RecordMatchScore(sp.MatchScore)
		scored = append(scored, sp)
	}

	params := st.sess.Params
	results := ranking.Filter(scored, params.MinMatch, params.MaxAgeDays, o.now())
	ranking.Rank(results)
	metrics.RecordRankedPostings(len(results))

	snap, err := st.update(ctx, func(s *session.Session) error {
		return s.Complete(results, cancelled, o.now())
	})
	if err != nil {
		return o.fail(ctx, st, err.Error())
	}

	o.log.Info(ctx, "session completed",
		logger.String("session", snap.ID),
		logger.Int("raw", len(raws)),
		logger.Int("canonical", len(canonical)),
		logger.Int("results", len(results)),
		logger.Bool("cancelled", cancelled),
	)
	o.publish(ctx, snap.ID, model.EventCompleted, model.CompletedPayload{
		Results:   len(results),
		Cancelled: cancelled,
		Sources:   snap.Sources,
	})
	return snap
}

func (o *Orchestrator) fail(ctx context.Context, st *runState, cause string) *session.Session {
	snap, err := st.update(ctx, func(s *session.Session) error { return s.Fail(cause, o.now()) })
	if err != nil {
		o.log.Error(ctx, "session cannot fail", logger.String("session", st.sess.ID), logger.Error(err))
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.sess.Clone()
	}
	o.log.Warn(ctx, "session failed",
		logger.String("session", snap.ID),
		logger.String("cause", cause),
	)
	o.publish(ctx, snap.ID, model.EventFailed, model.FailedPayload{Cause: cause})
	return snap
}

func (o *Orchestrator) publish(ctx context.Context, sessionID string, kind model.EventKind, payload any) {
	if o.publisher == nil {
		return
	}
	e := events.NewEvent(sessionID, kind, payload, o.now())
	if err := o.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		o.log.Warn(ctx, "event not fully delivered",
			logger.String("session", sessionID),
			logger.String("kind", string(kind)),
			logger.Error(err),
		)
	}
}
