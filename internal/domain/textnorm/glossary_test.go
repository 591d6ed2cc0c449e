package textnorm_test

import (
	"testing"

	"github.com/okian/jobscout/internal/domain/textnorm"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlossary(t *testing.T) {
	Convey("Given the default glossary", t, func() {
		g := textnorm.DefaultGlossary()

		Convey("When a Polish title carries seniority, contract and years", func() {
			got := g.Translate("Starszy Programista (umowa o pracę), 3–5 lat")

			Convey("Then terms are replaced and punctuation is kept", func() {
				So(got, ShouldEqual, "senior programmer (employment contract), 3–5 years")
			})
		})

		Convey("When a term is only part of a longer word", func() {
			So(g.Translate("Praca z programistami"), ShouldEqual, "praca z programistami")
		})

		Convey("When a multi-word term is split by punctuation", func() {
			So(g.Translate("umowa, o pracę"), ShouldEqual, "umowa, o prace")
		})

		Convey("When the text is already English", func() {
			So(g.Translate("Senior Go Developer"), ShouldEqual, "senior go developer")
		})

		Convey("When extra terms are merged in", func() {
			extended := g.With(map[string]string{
				"tester oprogramowania": "software tester",
				"Programista":           "coder",
			})

			Convey("Then the longer phrase wins and overrides replace defaults", func() {
				So(extended.Len(), ShouldEqual, g.Len()+1)
				So(extended.Translate("Tester Oprogramowania"), ShouldEqual, "software tester")
				So(extended.Translate("programista"), ShouldEqual, "coder")
				So(g.Translate("programista"), ShouldEqual, "programmer")
			})
		})
	})

	Convey("Given an empty glossary", t, func() {
		g := textnorm.NewGlossary(map[string]string{"": "x", "go": "Go"})

		Convey("Then it only folds", func() {
			So(g.Len(), ShouldEqual, 0)
			So(g.Translate("Starszy Programista"), ShouldEqual, "starszy programista")
		})
	})

	Convey("Given a nil glossary", t, func() {
		var g *textnorm.Glossary

		Convey("Then Translate folds and With builds a fresh table", func() {
			So(g.Translate("Łódź"), ShouldEqual, "lodz")
			So(g.With(map[string]string{"zdalnie": "remote"}).Translate("Zdalnie"), ShouldEqual, "remote")
		})
	})
}
