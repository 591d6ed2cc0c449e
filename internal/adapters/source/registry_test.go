package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/jobscout/internal/adapters/source"
	"github.com/okian/jobscout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type stubAdapter struct{ name string }

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) Search(context.Context, model.SearchQuery) []model.RawPosting { return nil }

func stub(name string) source.Constructor {
	return func(source.Deps) source.Adapter { return stubAdapter{name: name} }
}

func TestRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		r := source.DefaultRegistry()

		Convey("Then every built-in platform is registered in order", func() {
			So(r.Names(), ShouldResemble, []string{
				source.NameJustJoinIT, source.NameNoFluffJobs, source.NameLinkedIn, source.NameIndeed, source.NamePracuj,
			})
		})

		Convey("When building a subset in a different order", func() {
			adapters, err := r.Build([]string{source.NamePracuj, source.NameLinkedIn}, source.Deps{})

			Convey("Then adapters follow registry order", func() {
				So(err, ShouldBeNil)
				So(adapters, ShouldHaveLength, 2)
				So(adapters[0].Name(), ShouldEqual, source.NameLinkedIn)
				So(adapters[1].Name(), ShouldEqual, source.NamePracuj)
			})
		})

		Convey("When a name is unknown", func() {
			_, err := r.Build([]string{"monster"}, source.Deps{})

			Convey("Then building fails", func() {
				So(errors.Is(err, source.ErrUnknownSource), ShouldBeTrue)
			})
		})

		Convey("When LinkedIn is built without a browser", func() {
			adapters, err := r.Build([]string{source.NameLinkedIn}, source.Deps{})
			So(err, ShouldBeNil)
			chain, ok := adapters[0].(*source.Chain)
			So(ok, ShouldBeTrue)

			Convey("Then no browser strategy is configured", func() {
				So(chain.Strategies(), ShouldResemble, []string{"guest-api", "public-page"})
			})
		})
	})

	Convey("Given a custom registry", t, func() {
		r := source.NewRegistry()
		So(r.Register("a", stub("a")), ShouldBeNil)
		So(r.Register("b", stub("b")), ShouldBeNil)

		Convey("When a name is registered twice", func() {
			err := r.Register("a", stub("a"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, source.ErrDuplicateSource), ShouldBeTrue)
				So(r.Names(), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When nothing is enabled", func() {
			adapters, err := r.Build(nil, source.Deps{})
			So(err, ShouldBeNil)
			So(adapters, ShouldBeEmpty)
		})
	})
}
