package source_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/jobscout/internal/adapters/source"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type collector struct {
	mu    sync.Mutex
	diags []model.Diagnostic
}

func (c *collector) sink(d model.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

func (c *collector) strategies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.diags))
	for i, d := range c.diags {
		out[i] = d.Strategy
	}
	return out
}

func query(mode model.ScraperMode) model.SearchQuery {
	return model.SearchQuery{
		Source:   "board",
		Variant:  model.LocationVariant{Kind: model.VariantCity, Label: "Warsaw, Poland", City: "Warsaw"},
		Keywords: []string{"Go Developer"},
		Mode:     mode,
	}
}

func returning(postings []model.RawPosting, err error) func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
	return func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
		return postings, err
	}
}

func TestChainSearch(t *testing.T) {
	Convey("Given a chain of strategies", t, func() {
		c := &collector{}
		ctx := source.WithSink(context.Background(), c.sink)
		opts := []source.ChainOption{source.WithLogger(logger.Discard())}
		one := []model.RawPosting{{Title: "Go Developer", URL: "https://x/1"}}

		Convey("When the first strategy fails and the second succeeds", func() {
			var calls []string
			chain := source.NewChain("board", []source.Strategy{
				{Name: "api", Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					calls = append(calls, "api")
					return nil, errors.New("status 503")
				}},
				{Name: "page", Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					calls = append(calls, "page")
					return one, nil
				}},
				{Name: "never", Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					calls = append(calls, "never")
					return one, nil
				}},
			}, opts...)

			out := chain.Search(ctx, query(model.ModeEnhanced))

			Convey("Then strategies run in order until one yields postings", func() {
				So(calls, ShouldResemble, []string{"api", "page"})
				So(out, ShouldHaveLength, 1)
				So(out[0].Source, ShouldEqual, "board")
			})

			Convey("Then the failure is reported as a diagnostic", func() {
				So(c.diags, ShouldHaveLength, 1)
				So(c.diags[0].Source, ShouldEqual, "board")
				So(c.diags[0].Strategy, ShouldEqual, "api")
				So(c.diags[0].Reason, ShouldContainSubstring, "503")
				So(c.diags[0].Location, ShouldEqual, "Warsaw, Poland")
			})
		})

		Convey("When every strategy fails", func() {
			chain := source.NewChain("board", []source.Strategy{
				{Name: "a", Run: returning(nil, errors.New("boom"))},
				{Name: "b", Run: returning(nil, errors.New("bang"))},
			}, opts...)

			out := chain.Search(ctx, query(model.ModeEnhanced))

			Convey("Then the result is empty with one diagnostic per strategy", func() {
				So(out, ShouldBeEmpty)
				So(c.strategies(), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When a strategy returns nothing", func() {
			strategies := []source.Strategy{
				{Name: "a", Run: returning(nil, nil)},
				{Name: "b", Run: returning(one, nil)},
			}

			Convey("Then the next strategy is tried by default", func() {
				out := source.NewChain("board", strategies, opts...).Search(ctx, query(model.ModeEnhanced))
				So(out, ShouldHaveLength, 1)
				So(c.diags, ShouldBeEmpty)
			})

			Convey("Then an accept-empty chain stops there", func() {
				chainOpts := append(opts, source.WithAcceptEmpty(true))
				out := source.NewChain("board", strategies, chainOpts...).Search(ctx, query(model.ModeEnhanced))
				So(out, ShouldBeEmpty)
				So(c.diags, ShouldBeEmpty)
			})
		})

		Convey("When a strategy outlives its timeout", func() {
			release := make(chan struct{})
			defer close(release)
			chain := source.NewChain("board", []source.Strategy{
				{Name: "slow", Timeout: 20 * time.Millisecond, Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					<-release
					return one, nil
				}},
				{Name: "fast", Run: returning(one, nil)},
			}, opts...)

			started := time.Now()
			out := chain.Search(ctx, query(model.ModeEnhanced))

			Convey("Then it is abandoned and the chain moves on", func() {
				So(time.Since(started), ShouldBeLessThan, time.Second)
				So(out, ShouldHaveLength, 1)
				So(c.strategies(), ShouldResemble, []string{"slow"})
				So(c.diags[0].Reason, ShouldContainSubstring, "deadline")
			})
		})

		Convey("When a strategy panics", func() {
			chain := source.NewChain("board", []source.Strategy{
				{Name: "bad", Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					panic("nil map")
				}},
				{Name: "good", Run: returning(one, nil)},
			}, opts...)

			out := chain.Search(ctx, query(model.ModeEnhanced))

			Convey("Then the panic becomes a diagnostic", func() {
				So(out, ShouldHaveLength, 1)
				So(c.diags, ShouldHaveLength, 1)
				So(c.diags[0].Reason, ShouldContainSubstring, "panic")
			})
		})

		Convey("When running in basic mode", func() {
			ran := false
			chain := source.NewChain("board", []source.Strategy{
				{Name: "browser", EnhancedOnly: true, Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					ran = true
					return one, nil
				}},
			}, opts...)

			out := chain.Search(ctx, query(model.ModeBasic))

			Convey("Then enhanced-only strategies are skipped silently", func() {
				So(ran, ShouldBeFalse)
				So(out, ShouldBeEmpty)
				So(c.diags, ShouldBeEmpty)
			})
		})

		Convey("When postings lack a title", func() {
			cached := []model.RawPosting{{Title: ""}, {Title: "QA", Source: "spoofed"}}
			chain := source.NewChain("board", []source.Strategy{
				{Name: "a", Run: returning(cached, nil)},
			}, opts...)

			out := chain.Search(ctx, query(model.ModeEnhanced))

			Convey("Then they are dropped and the rest stamped with the chain name", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].Source, ShouldEqual, "board")
			})

			Convey("Then the strategy's own slice is left as it was", func() {
				So(cached[0].Title, ShouldEqual, "")
				So(cached[1].Title, ShouldEqual, "QA")
				So(cached[1].Source, ShouldEqual, "spoofed")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			ran := false
			chain := source.NewChain("board", []source.Strategy{
				{Name: "a", Run: func(context.Context, model.SearchQuery) ([]model.RawPosting, error) {
					ran = true
					return one, nil
				}},
			}, opts...)

			out := chain.Search(cctx, query(model.ModeEnhanced))

			Convey("Then nothing runs", func() {
				So(ran, ShouldBeFalse)
				So(out, ShouldBeEmpty)
				So(c.diags, ShouldHaveLength, 1)
			})
		})

		Convey("When listing strategies", func() {
			chain := source.NewChain("board", []source.Strategy{{Name: "x"}, {Name: "y"}}, opts...)
			So(chain.Name(), ShouldEqual, "board")
			So(chain.Strategies(), ShouldResemble, []string{"x", "y"})
		})
	})

	Convey("Given a context without a sink", t, func() {
		chain := source.NewChain("board", []source.Strategy{
			{Name: "a", Run: returning(nil, errors.New("boom"))},
		}, source.WithLogger(logger.Discard()))

		Convey("Then failures are still swallowed", func() {
			So(func() { chain.Search(context.Background(), query(model.ModeEnhanced)) }, ShouldNotPanic)
		})
	})
}
