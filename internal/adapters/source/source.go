// Package source adapts external job boards to a single search contract.
//
// Every platform is a Chain of strategies tried in order under their own
// timeouts. Failures never escape a Chain: they are reported as diagnostics
// and the caller sees an empty result.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default chain configuration constants.
const (
	defaultStrategyTimeout = 20 * time.Second
)

// Outcome labels shared by logs and metrics.
const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeFailed  = "failed"
	outcomeTimeout = "timeout"
	outcomeSkipped = "skipped"
)

// Adapter searches one platform. Search never fails; problems are reported
// through the DiagnosticSink carried by ctx.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q model.SearchQuery) []model.RawPosting
}

// Strategy is one way of getting postings from a platform.
type Strategy struct {
	Name string
	// Timeout overrides the chain default when positive.
	Timeout time.Duration
	// EnhancedOnly strategies are skipped in basic scraper mode.
	EnhancedOnly bool
	Run          func(ctx context.Context, q model.SearchQuery) ([]model.RawPosting, error)
}

// DiagnosticSink receives strategy failures.
type DiagnosticSink func(model.Diagnostic)

type sinkKey struct{}

// WithSink returns a context whose searches report diagnostics to sink.
func WithSink(ctx context.Context, sink DiagnosticSink) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink)
}

func sinkFrom(ctx context.Context) DiagnosticSink {
	if s, ok := ctx.Value(sinkKey{}).(DiagnosticSink); ok && s != nil {
		return s
	}
	return func(model.Diagnostic) {}
}

// Chain is an Adapter that walks its strategies until one succeeds.
type Chain struct {
	name        string
	strategies  []Strategy
	acceptEmpty bool
	timeout     time.Duration
	log         logger.Logger
}

// NewChain creates a Chain for the named source.
func NewChain(name string, strategies []Strategy, opts ...ChainOption) *Chain {
	c := &Chain{
		name:       name,
		strategies: strategies,
		timeout:    defaultStrategyTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("source." + name)
	}
	return c
}

// Name returns the source name stamped on every posting.
func (c *Chain) Name() string { return c.name }

// Strategies lists strategy names in the order they are tried.
func (c *Chain) Strategies() []string {
	out := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Name
	}
	return out
}

// Search returns the postings of the first strategy yielding any. With
// accept-empty the first strategy finishing without error ends the chain.
func (c *Chain) Search(ctx context.Context, q model.SearchQuery) []model.RawPosting {
	sink := sinkFrom(ctx)
	outcome := outcomeEmpty
	defer func() { metrics.RecordSourceTask(c.name, outcome) }()

	failures := 0
	for _, s := range c.strategies {
		if s.EnhancedOnly && q.Mode == model.ModeBasic {
			metrics.RecordStrategyAttempt(c.name, s.Name, outcomeSkipped, 0)
			continue
		}
		if err := ctx.Err(); err != nil {
			c.report(ctx, sink, q, s.Name, err)
			failures++
			break
		}

		started := time.Now()
		postings, err := c.run(ctx, s, q)
		elapsed := time.Since(started)

		if err != nil {
			label := outcomeFailed
			if errors.Is(err, context.DeadlineExceeded) {
				label = outcomeTimeout
			}
			metrics.RecordStrategyAttempt(c.name, s.Name, label, elapsed)
			c.report(ctx, sink, q, s.Name, err)
			failures++
			continue
		}

		postings = c.stamp(postings)
		if len(postings) > 0 {
			metrics.RecordStrategyAttempt(c.name, s.Name, outcomeOK, elapsed)
			metrics.RecordPostingsFetched(c.name, len(postings))
			outcome = outcomeOK
			c.log.Debug(ctx, "strategy succeeded",
				logger.String("strategy", s.Name),
				logger.String("location", q.Variant.Label),
				logger.Int("postings", len(postings)),
				logger.Duration("elapsed", elapsed),
			)
			return postings
		}

		metrics.RecordStrategyAttempt(c.name, s.Name, outcomeEmpty, elapsed)
		if c.acceptEmpty {
			return nil
		}
	}
	if failures > 0 {
		outcome = outcomeFailed
	}
	return nil
}

// run executes one strategy under its timeout. A strategy that ignores its
// context is abandoned when the timeout fires.
func (c *Chain) run(ctx context.Context, s Strategy, q model.SearchQuery) ([]model.RawPosting, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		postings []model.RawPosting
		err      error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		p, err := s.Run(ctx, q)
		done <- result{postings: p, err: err}
	}()

	select {
	case r := <-done:
		return r.postings, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stamp copies the titled postings and sets their source. The strategy's
// slice is left untouched.
func (c *Chain) stamp(in []model.RawPosting) []model.RawPosting {
	out := make([]model.RawPosting, 0, len(in))
	for _, p := range in {
		if p.Title == "" {
			continue
		}
		p.Source = c.name
		out = append(out, p)
	}
	return out
}

func (c *Chain) report(ctx context.Context, sink DiagnosticSink, q model.SearchQuery, strategy string, err error) {
	d := model.Diagnostic{
		Source:   c.name,
		Strategy: strategy,
		Reason:   err.Error(),
		Location: q.Variant.Label,
	}
	c.log.Warn(ctx, "strategy failed",
		logger.String("strategy", strategy),
		logger.String("location", q.Variant.Label),
		logger.Error(d.Err()),
	)
	metrics.RecordErrorByComponent("source", c.name)
	sink(d)
}
