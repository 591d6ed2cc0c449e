package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/jobscout/internal/domain/dedupe"
	"github.com/okian/jobscout/internal/domain/location"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSeenSet(t *testing.T) {
	convey.Convey("Given a bounded seen-set", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		convey.Convey("When a key is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "linkedin|city:Warsaw, Poland")
			second := d.SeenAndRecord(ctx, "linkedin|city:Warsaw, Poland")

			convey.Convey("Then only the second call reports it as seen", func() {
				convey.So(first, convey.ShouldBeFalse)
				convey.So(second, convey.ShouldBeTrue)
				convey.So(d.Size(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the capacity is exceeded", func() {
			for _, k := range []string{"a", "b", "c", "d"} {
				d.SeenAndRecord(ctx, k)
			}

			convey.Convey("Then the oldest key is evicted first", func() {
				convey.So(d.Size(), convey.ShouldEqual, 3)
				convey.So(d.SeenAndRecord(ctx, "a"), convey.ShouldBeFalse)
				convey.So(d.SeenAndRecord(ctx, "d"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "a")
			d.Unrecord(ctx, "a")
			d.Unrecord(ctx, "missing")

			convey.Convey("Then it can be recorded again", func() {
				convey.So(d.Size(), convey.ShouldEqual, 0)
				convey.So(d.SeenAndRecord(ctx, "a"), convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given an unbounded seen-set used concurrently", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		var wg sync.WaitGroup
		var mu sync.Mutex
		fresh := 0
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if !d.SeenAndRecord(ctx, fmt.Sprintf("k%d", j)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		convey.So(fresh, convey.ShouldEqual, 100)
		convey.So(d.Size(), convey.ShouldEqual, 100)
	})
}

func raw(source, title, company, loc, desc string) model.RawPosting {
	return model.RawPosting{
		Source:      source,
		Title:       title,
		Company:     company,
		Location:    loc,
		Description: desc,
		URL:         "https://" + source + ".example/" + title,
	}
}

func TestMerger(t *testing.T) {
	convey.Convey("Given a merger bucketing with the default location table", t, func() {
		m := dedupe.NewMerger(dedupe.WithBucketer(location.DefaultTable().Bucket))

		convey.Convey("When the same job arrives from three sources", func() {
			out := m.Merge([]model.RawPosting{
				raw("justjoinit", "Senior Go Developer", "Acme", "Warszawa", "short"),
				raw("linkedin", "senior go developer", "ACME", "Warsaw, Poland", "a much longer description"),
				raw("pracuj", "Senior  Go Developer!", "acme", "warszawa", "medium text"),
			})

			convey.Convey("Then one canonical posting keeps the longest description", func() {
				convey.So(out, convey.ShouldHaveLength, 1)
				convey.So(out[0].Representative.Source, convey.ShouldEqual, "linkedin")
			})

			convey.Convey("Then every source is recorded in first-contribution order", func() {
				convey.So(out[0].Sources, convey.ShouldResemble, []string{"justjoinit", "linkedin", "pracuj"})
			})
		})

		convey.Convey("When descriptions tie", func() {
			out := m.Merge([]model.RawPosting{
				raw("nofluffjobs", "Data Analyst", "Beta", "Krakow", "same"),
				raw("indeed", "Data Analyst", "Beta", "Kraków", "same"),
			})

			convey.Convey("Then the earliest seen posting is the representative", func() {
				convey.So(out, convey.ShouldHaveLength, 1)
				convey.So(out[0].Representative.Source, convey.ShouldEqual, "nofluffjobs")
			})
		})

		convey.Convey("When titles are close but not identical", func() {
			out := m.Merge([]model.RawPosting{
				raw("linkedin", "Backend Engineer Go Kubernetes Cloud", "Gamma", "Remote", "x"),
				raw("indeed", "Backend Engineer Go Kubernetes", "Gamma", "Poland", "y"),
			})

			convey.Convey("Then an overlap of at least 0.8 collapses them", func() {
				convey.So(out, convey.ShouldHaveLength, 1)
				convey.So(out[0].Sources, convey.ShouldResemble, []string{"linkedin", "indeed"})
			})
		})

		convey.Convey("When any part of the equivalence rule differs", func() {
			out := m.Merge([]model.RawPosting{
				raw("a", "Go Developer", "Acme", "Warsaw", ""),
				raw("b", "Go Developer", "Other", "Warsaw", ""),
				raw("c", "Go Developer", "Acme", "Gdansk", ""),
				raw("d", "Go Developer Lead Platform", "Acme", "Warsaw", ""),
			})

			convey.Convey("Then the postings stay distinct", func() {
				convey.So(out, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When titles reorder the same words", func() {
			posts := []model.RawPosting{
				raw("linkedin", "Python Developer", "Delta", "Warsaw", ""),
				raw("indeed", "Developer Python", "Delta", "Warsaw", ""),
			}

			convey.Convey("Then the title prefix keeps them in separate blocks", func() {
				convey.So(m.Merge(posts), convey.ShouldHaveLength, 2)
			})

			convey.Convey("Then a zero-length prefix blocks on company and location only", func() {
				wide := dedupe.NewMerger(dedupe.WithBucketer(location.DefaultTable().Bucket), dedupe.WithBlockPrefix(0))
				convey.So(wide.Merge(posts), convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the output is merged again", func() {
			first := m.Merge([]model.RawPosting{
				raw("a", "Go Developer", "Acme", "Warsaw", "one"),
				raw("b", "Go Developer", "Acme", "Warszawa", "three"),
				raw("c", "Python Developer", "Acme", "Warsaw", ""),
				raw("d", "Go Developer", "Zeta", "Remote", ""),
			})
			second := m.MergeCanonical(first)

			convey.Convey("Then the result is unchanged", func() {
				convey.So(second, convey.ShouldResemble, first)
			})
		})

		convey.Convey("When identical postings arrive in different orders", func() {
			a := raw("linkedin", "QA Engineer", "Delta", "Poznan", "desc")
			b := raw("indeed", "qa engineer", "delta", "Poznań, Poland", "desc")
			c := raw("pracuj", "Designer", "Delta", "Poznan", "")

			forward := m.Merge([]model.RawPosting{a, b, c})
			backward := m.Merge([]model.RawPosting{c, b, a})

			convey.Convey("Then they always collapse to one posting", func() {
				convey.So(forward, convey.ShouldHaveLength, 2)
				convey.So(backward, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When nothing is passed", func() {
			convey.So(m.Merge(nil), convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a stricter threshold", t, func() {
		m := dedupe.NewMerger(dedupe.WithTitleThreshold(1), dedupe.WithBlockPrefix(2))
		out := m.Merge([]model.RawPosting{
			raw("a", "Backend Engineer Go Kubernetes Cloud", "Gamma", "x", ""),
			raw("b", "Backend Engineer Go Kubernetes", "Gamma", "x", ""),
		})

		convey.So(out, convey.ShouldHaveLength, 2)
	})
}
