package profile_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

const resume = `Jane Doe
Objective: Senior Backend Engineer
Skills: Golang, Postgres, Docker, k8s, JS

Experience
Backend Developer | Acme Corp
Mar 2019 – Feb 2021
Software Engineer at Beta
Mar 2021 - Present
`

func fixedClock() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) }

func TestExtract(t *testing.T) {
	Convey("Given an extractor with a fixed clock", t, func() {
		ex := profile.New(profile.WithClock(fixedClock))

		Convey("When extracting a typical resume", func() {
			p, err := ex.Extract(resume)

			Convey("Then skills resolve through aliases and are sorted", func() {
				So(err, ShouldBeNil)
				So(p.Skills, ShouldResemble, []string{"Docker", "Go", "JavaScript", "Kubernetes", "PostgreSQL"})
			})

			Convey("Then target roles come in order of appearance", func() {
				So(p.TargetRoles, ShouldResemble, []string{"senior backend engineer", "backend developer", "software engineer"})
			})

			Convey("Then experience sums the date ranges", func() {
				So(p.ExperienceYears, ShouldNotBeNil)
				// 23 months + 36 months
				So(*p.ExperienceYears, ShouldEqual, 4.9)
			})

			Convey("Then keywords hold unigrams and n-grams without stopwords", func() {
				So(p.Keywords, ShouldContain, "golang")
				So(p.Keywords, ShouldContain, "backend engineer")
				So(p.Keywords, ShouldContain, "senior backend engineer")
				So(p.Keywords, ShouldNotContain, "at")
			})
		})

		Convey("When extracting the same text twice", func() {
			a, _ := ex.Extract(resume)
			b, _ := ex.Extract(resume)

			Convey("Then the profiles are identical", func() {
				So(a, ShouldResemble, b)
			})
		})

		Convey("When the text is empty or only stopwords", func() {
			_, errEmpty := ex.Extract("   \n\t ")
			_, errStop := ex.Extract("the and of, to!")

			Convey("Then extraction fails with a profile error", func() {
				So(errors.Is(errEmpty, model.ErrProfileExtraction), ShouldBeTrue)
				So(errEmpty.Error(), ShouldContainSubstring, "resume text empty")
				So(errors.Is(errStop, model.ErrProfileExtraction), ShouldBeTrue)
			})
		})

		Convey("When the text has a single non-stopword token", func() {
			p, err := ex.Extract("Go")

			Convey("Then it succeeds with a non-empty keyword set", func() {
				So(err, ShouldBeNil)
				So(p.Keywords, ShouldResemble, []string{"go"})
				So(p.ExperienceYears, ShouldBeNil)
				So(p.TargetRoles, ShouldBeEmpty)
			})
		})
	})
}

func TestExperienceRanges(t *testing.T) {
	Convey("Given date ranges in several shapes", t, func() {
		ex := profile.New(profile.WithClock(fixedClock))

		Convey("When years only are given", func() {
			p, _ := ex.Extract("Engineer 2018 – 2020")
			So(*p.ExperienceYears, ShouldEqual, 2.0)
		})

		Convey("When a range ends in the future", func() {
			p, _ := ex.Extract("Engineer Jan 2023 - Dec 2030")
			// capped at March 2024
			So(*p.ExperienceYears, ShouldEqual, 1.2)
		})

		Convey("When a range is inverted", func() {
			p, _ := ex.Extract("Engineer 2022 - 2019")
			So(*p.ExperienceYears, ShouldEqual, 0.0)
		})
	})
}

func TestTaxonomy(t *testing.T) {
	Convey("Given the default taxonomy", t, func() {
		tax := profile.DefaultTaxonomy()

		Convey("Then whole-phrase matching keeps Java and JavaScript apart", func() {
			So(tax.Match("senior javascript developer"), ShouldResemble, []string{"JavaScript"})
			So(tax.Match("java and sql"), ShouldResemble, []string{"Java", "SQL"})
		})

		Convey("When aliases are added", func() {
			ext := tax.WithAliases(map[string][]string{"Kubernetes": {"kube"}, "Elixir": nil})

			Convey("Then the copy knows them and the original does not", func() {
				So(ext.Mentions("we run kube clusters", "Kubernetes"), ShouldBeTrue)
				So(tax.Mentions("we run kube clusters", "Kubernetes"), ShouldBeFalse)
				So(ext.Len(), ShouldEqual, tax.Len()+1)
			})
		})

		Convey("Then unknown skills match on their own name", func() {
			So(tax.Mentions("cobol mainframe", "COBOL"), ShouldBeTrue)
		})
	})
}
