package location_test

import (
	"errors"
	"testing"

	"github.com/okian/jobscout/internal/domain/location"
	"github.com/okian/jobscout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func labels(vs []model.LocationVariant) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Label
	}
	return out
}

func TestExpand(t *testing.T) {
	Convey("Given the default expander", t, func() {
		e := location.NewExpander(nil)

		Convey("When expanding a country with remote", func() {
			vs, err := e.Expand("poland", true)

			Convey("Then cities come in canonical order, then country, then remote", func() {
				So(err, ShouldBeNil)
				So(labels(vs), ShouldResemble, []string{
					"Warsaw, Poland", "Krakow, Poland", "Wroclaw, Poland", "Poznan, Poland", "Gdansk, Poland",
					"Lodz, Poland", "Katowice, Poland", "Szczecin, Poland", "Lublin, Poland", "Bydgoszcz, Poland",
					"Poland", "Remote, Poland",
				})
				So(vs[0].Kind, ShouldEqual, model.VariantCity)
				So(vs[0].NativeName, ShouldEqual, "Warszawa")
				So(vs[10].Kind, ShouldEqual, model.VariantCountry)
				So(vs[11].Kind, ShouldEqual, model.VariantRemote)
			})
		})

		Convey("When expanding a country without remote", func() {
			vs, err := e.Expand("Polska", false)

			Convey("Then the country-wide variant is last", func() {
				So(err, ShouldBeNil)
				So(len(vs), ShouldEqual, 11)
				So(vs[len(vs)-1].Label, ShouldEqual, "Poland")
			})
		})

		Convey("When expanding a city by its native name", func() {
			vs, err := e.Expand("Łódź", true)

			Convey("Then exactly the city and remote come back", func() {
				So(err, ShouldBeNil)
				So(labels(vs), ShouldResemble, []string{"Lodz, Poland", "Remote, Poland"})
			})
		})

		Convey("When expanding a city with its country suffix", func() {
			vs, err := e.Expand("Kraków, Poland", false)
			So(err, ShouldBeNil)
			So(labels(vs), ShouldResemble, []string{"Krakow, Poland"})
		})

		Convey("When the expansion is repeated", func() {
			a, _ := e.Expand("Poland", true)
			b, _ := e.Expand("Poland", true)
			So(a, ShouldResemble, b)
		})

		Convey("When the name is unknown", func() {
			_, err := e.Expand("Atlantis", true)

			Convey("Then it fails with an unknown location error", func() {
				So(errors.Is(err, model.ErrUnknownLocation), ShouldBeTrue)
			})
		})
	})
}

func TestOpaque(t *testing.T) {
	Convey("Given unknown names", t, func() {
		Convey("Then the raw name becomes one variant plus remote", func() {
			vs := location.Opaque(" Berlin ", true)
			So(labels(vs), ShouldResemble, []string{"Berlin", "Remote"})
			So(vs[0].Kind, ShouldEqual, model.VariantOpaque)
		})

		Convey("Then a name already meaning remote gets no extra variant", func() {
			So(len(location.Opaque("Remote EU", true)), ShouldEqual, 1)
			So(len(location.Opaque("Berlin", false)), ShouldEqual, 1)
		})
	})
}

func TestBucket(t *testing.T) {
	Convey("Given the default table", t, func() {
		table := location.DefaultTable()

		Convey("Then city spellings share a bucket", func() {
			So(table.Bucket("Warszawa, mazowieckie"), ShouldEqual, table.Bucket("Warsaw, Poland"))
			So(table.Bucket("Kraków"), ShouldEqual, "city:poland/krakow")
		})

		Convey("Then country-wide, remote and empty locations reconcile", func() {
			So(table.Bucket("Poland"), ShouldEqual, "country:poland")
			So(table.Bucket("Remote"), ShouldEqual, "country:poland")
			So(table.Bucket("Praca zdalna"), ShouldEqual, "country:poland")
			So(table.Bucket(""), ShouldEqual, "country:poland")
		})

		Convey("Then different cities differ", func() {
			So(table.Bucket("Gdansk"), ShouldNotEqual, table.Bucket("Gdynia"))
			So(table.Bucket("Gdynia"), ShouldEqual, "other:gdynia")
		})
	})
}
