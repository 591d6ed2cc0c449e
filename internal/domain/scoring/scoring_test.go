package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/profile"
	"github.com/okian/jobscout/internal/domain/scoring"
	"github.com/okian/jobscout/internal/domain/textnorm"
	. "github.com/smartystreets/goconvey/convey"
)

const resume = `Jane Doe
Objective: Backend Developer

Experience
Software Engineer, Acme (Jan 2019 - Dec 2021)
Developed and maintained Python services backed by PostgreSQL and SQL reporting.
Built REST APIs, collaborated with data teams and optimized queries.`

func posting(title, desc string) model.CanonicalPosting {
	return model.CanonicalPosting{
		Representative: model.RawPosting{
			Source:      "linkedin",
			Title:       title,
			Company:     "Acme",
			Location:    "Warsaw",
			Description: desc,
			URL:         "https://example.com/" + title,
		},
		Sources: []string{"linkedin"},
	}
}

func years(v float64) *float64 { return &v }

func TestMatcherScore(t *testing.T) {
	Convey("Given the default matcher", t, func() {
		m := scoring.NewMatcher()

		Convey("When the profile skills are Python and SQL", func() {
			p := model.Profile{Skills: []string{"Python", "SQL"}, RawText: "python sql"}
			out := m.Score(p, posting("Developer", "Looking for a Python developer with SQL experience"))

			Convey("Then both skills match fully", func() {
				So(out.SubScores[scoring.FactorSkills], ShouldEqual, 100)
				So(out.MatchedSkills, ShouldResemble, []string{"Python", "SQL"})
			})
		})

		Convey("When scoring a realistic resume against several postings", func() {
			p, err := profile.New().Extract(resume)
			So(err, ShouldBeNil)

			posts := []model.CanonicalPosting{
				posting("Backend Developer", "We need a backend developer who developed Python services with PostgreSQL. 3+ years of experience."),
				posting("Senior Data Engineer", "Spark, Kafka and SQL pipelines. At least 6 years."),
				posting("Florist", "Arrange flowers for weddings."),
				posting("Intern", ""),
			}

			Convey("Then every score is in range and equals the rounded weighted sum", func() {
				for _, c := range posts {
					out := m.Score(p, c)
					So(out.MatchScore, ShouldBeBetweenOrEqual, 0, 100)

					var sum float64
					for _, f := range scoring.Factors {
						v := out.SubScores[f]
						So(v, ShouldBeBetweenOrEqual, 0, 100)
						sum += m.Weights().Of(f) * v
					}
					So(math.Abs(sum-float64(out.MatchScore)), ShouldBeLessThanOrEqualTo, 0.5)
				}
			})

			Convey("Then a relevant posting outranks an unrelated one", func() {
				good := m.Score(p, posts[0])
				bad := m.Score(p, posts[2])
				So(good.MatchScore, ShouldBeGreaterThan, bad.MatchScore)
				So(good.SubScores[scoring.FactorRole], ShouldEqual, 100)
				So(bad.SubScores[scoring.FactorSemantic], ShouldEqual, 0)
			})

			Convey("Then scoring is deterministic", func() {
				So(m.Score(p, posts[1]), ShouldResemble, m.Score(p, posts[1]))
			})
		})

		Convey("When the description is empty", func() {
			p := model.Profile{Keywords: []string{"go"}, Skills: []string{"Go"}, RawText: "go developer"}
			out := m.Score(p, posting("Go Developer", ""))

			Convey("Then content and semantic factors are zero", func() {
				So(out.SubScores[scoring.FactorDescription], ShouldEqual, 0)
				So(out.SubScores[scoring.FactorSemantic], ShouldEqual, 0)
				So(out.SubScores[scoring.FactorSkills], ShouldEqual, 0)
				So(out.SubScores[scoring.FactorKeywords], ShouldEqual, 100)
			})
		})

		Convey("When the profile has no skills", func() {
			p := model.Profile{Keywords: []string{"python"}, RawText: "python developer"}
			out := m.Score(p, posting("Python Developer", "python developer wanted"))

			Convey("Then only the skill factor is zero", func() {
				So(out.SubScores[scoring.FactorSkills], ShouldEqual, 0)
				So(out.MatchedSkills, ShouldBeEmpty)
				So(out.SubScores[scoring.FactorKeywords], ShouldEqual, 100)
				So(out.SubScores[scoring.FactorSemantic], ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the profile has no target roles", func() {
			out := m.Score(model.Profile{RawText: "x"}, posting("Anything", "text"))

			Convey("Then role relevance is neutral", func() {
				So(out.SubScores[scoring.FactorRole], ShouldEqual, 50)
			})
		})

		Convey("When a target role only partially matches the title", func() {
			p := model.Profile{TargetRoles: []string{"backend engineer"}, RawText: "x"}
			out := m.Score(p, posting("Platform Engineer", "text"))

			Convey("Then the token overlap is used", func() {
				So(out.SubScores[scoring.FactorRole], ShouldEqual, 50)
			})
		})

		Convey("When the profile lacks experience", func() {
			p := model.Profile{ExperienceYears: years(2), RawText: "x"}

			Convey("Then each missing year costs 20 points", func() {
				out := m.Score(p, posting("Developer", "5+ years of experience required"))
				So(out.SubScores[scoring.FactorExperience], ShouldEqual, 40)
			})

			Convey("Then the penalty floors at zero", func() {
				out := m.Score(p, posting("Developer", "minimum 10 years"))
				So(out.SubScores[scoring.FactorExperience], ShouldEqual, 0)
			})

			Convey("Then meeting the requirement scores full", func() {
				out := m.Score(p, posting("Developer", "1-2 years of experience"))
				So(out.SubScores[scoring.FactorExperience], ShouldEqual, 100)
			})
		})

		Convey("When the profile experience is unknown", func() {
			out := m.Score(model.Profile{RawText: "x"}, posting("Principal Engineer", "15+ years"))
			So(out.SubScores[scoring.FactorExperience], ShouldEqual, 100)
		})
	})

	Convey("Given a Polish posting and an English profile", t, func() {
		p := model.Profile{
			Skills:          []string{"Python"},
			TargetRoles:     []string{"Senior Programmer"},
			ExperienceYears: years(5),
			RawText:         "Senior programmer. Built Python services on relational databases in a remote team.",
		}
		pl := posting("Starszy Programista Python",
			"Wymagania: co najmniej 4 lata doświadczenia z Python i bazy danych. Umowa o pracę, praca zdalna, zespół 6 osób.")

		translated := scoring.NewMatcher().Score(p, pl)
		raw := scoring.NewMatcher(scoring.WithGlossary(textnorm.NewGlossary(nil))).Score(p, pl)

		Convey("Then the translated title matches the target role", func() {
			So(translated.SubScores[scoring.FactorRole], ShouldEqual, 100)
			So(raw.SubScores[scoring.FactorRole], ShouldEqual, 0)
		})

		Convey("Then the translated posting scores higher", func() {
			So(translated.MatchedSkills, ShouldResemble, []string{"Python"})
			So(translated.SubScores[scoring.FactorDescription], ShouldBeGreaterThan, raw.SubScores[scoring.FactorDescription])
			So(translated.MatchScore, ShouldBeGreaterThan, raw.MatchScore)
		})

		Convey("Then the stated years count against a shorter profile", func() {
			junior := p
			junior.ExperienceYears = years(2)
			out := scoring.NewMatcher().Score(junior, pl)
			So(out.SubScores[scoring.FactorExperience], ShouldEqual, 60)
		})
	})

	Convey("Given a matcher with a custom penalty and weights", t, func() {
		w, err := scoring.NewWeights(map[string]float64{scoring.FactorExperience: 1})
		So(err, ShouldBeNil)
		m := scoring.NewMatcher(scoring.WithWeights(w), scoring.WithExperiencePenalty(10))

		out := m.Score(model.Profile{ExperienceYears: years(1), RawText: "x"}, posting("Senior Developer", ""))

		Convey("Then the score is the single weighted factor", func() {
			So(out.SubScores[scoring.FactorExperience], ShouldEqual, 60)
			So(out.MatchScore, ShouldEqual, 60)
		})
	})
}

func TestRequiredYears(t *testing.T) {
	Convey("Given posting texts", t, func() {
		cases := []struct {
			title, desc string
			want        float64
			found       bool
		}{
			{"Developer", "We expect 3-5 years of experience", 3, true},
			{"Developer", "at least 4 years in backend", 4, true},
			{"Developer", "Minimum of 2 yrs", 2, true},
			{"Developer", "7+ years", 7, true},
			{"Developer", "6 years of commercial experience", 6, true},
			{"Senior Go Developer", "", 5, true},
			{"Lead Engineer", "", 7, true},
			{"Junior Analyst", "", 1, true},
			{"Summer Intern", "5+ years", 0, true},
			{"Developer", "Great team", 0, false},
			{"Starszy Programista Python", "Wymagania: minimum 4 lata doświadczenia komercyjnego", 4, true},
			{"Starszy Programista", "", 5, true},
			{"Młodszy Analityk", "Praca z zespołem", 1, true},
			{"Praktykant IT", "", 0, true},
		}

		for _, c := range cases {
			got, ok := scoring.RequiredYears(c.title, c.desc)
			So(ok, ShouldEqual, c.found)
			So(got, ShouldEqual, c.want)
		}
	})
}

func TestWeights(t *testing.T) {
	Convey("Given weight tables", t, func() {
		Convey("When using the defaults", func() {
			w := scoring.DefaultWeights()
			var sum float64
			for _, v := range w.Map() {
				sum += v
			}

			Convey("Then they follow the 35/25/20/10/5/5 split", func() {
				So(w.Of(scoring.FactorDescription), ShouldAlmostEqual, 0.35, 1e-9)
				So(w.Of(scoring.FactorRole), ShouldAlmostEqual, 0.05, 1e-9)
				So(sum, ShouldAlmostEqual, 1, 1e-9)
			})
		})

		Convey("When weights do not sum to one", func() {
			w, err := scoring.NewWeights(map[string]float64{scoring.FactorSkills: 2, scoring.FactorKeywords: 2})

			Convey("Then they are normalized", func() {
				So(err, ShouldBeNil)
				So(w.Of(scoring.FactorSkills), ShouldEqual, 0.5)
				So(w.Of(scoring.FactorSemantic), ShouldEqual, 0)
			})
		})

		Convey("When a table is invalid", func() {
			_, neg := scoring.NewWeights(map[string]float64{scoring.FactorSkills: -1, scoring.FactorRole: 2})
			_, unknown := scoring.NewWeights(map[string]float64{"salary": 1})
			_, zero := scoring.NewWeights(map[string]float64{scoring.FactorSkills: 0})

			Convey("Then it is rejected", func() {
				So(errors.Is(neg, scoring.ErrInvalidWeights), ShouldBeTrue)
				So(errors.Is(unknown, scoring.ErrInvalidWeights), ShouldBeTrue)
				So(errors.Is(zero, scoring.ErrInvalidWeights), ShouldBeTrue)
			})
		})
	})
}

type countingScorer struct {
	calls int
	inner scoring.Scorer
}

func (c *countingScorer) Score(p model.Profile, cp model.CanonicalPosting) model.ScoredPosting {
	c.calls++
	return c.inner.Score(p, cp)
}

func TestCachedScorer(t *testing.T) {
	Convey("Given a cached scorer", t, func() {
		inner := &countingScorer{inner: scoring.NewMatcher()}
		cache := scoring.NewCachedScorer(inner, scoring.WithCacheSize(2))
		p := model.Profile{Skills: []string{"Go"}, RawText: "go developer"}
		a := posting("Go Developer", "golang services")

		Convey("When the same pair is scored twice", func() {
			first := cache.Score(p, a)
			first.SubScores[scoring.FactorSkills] = -1
			second := cache.Score(p, a)

			Convey("Then the inner scorer runs once and results are not shared", func() {
				So(inner.calls, ShouldEqual, 1)
				So(cache.Len(), ShouldEqual, 1)
				So(second.SubScores[scoring.FactorSkills], ShouldEqual, 100)
			})
		})

		Convey("When the same posting comes from another source", func() {
			b := a
			b.Sources = []string{"indeed"}
			cache.Score(p, a)
			out := cache.Score(p, b)

			Convey("Then the hit carries the caller's posting", func() {
				So(inner.calls, ShouldEqual, 1)
				So(out.Sources, ShouldResemble, []string{"indeed"})
			})
		})

		Convey("When the cache overflows", func() {
			cache.Score(p, a)
			cache.Score(p, posting("Rust Developer", "rust"))
			cache.Score(p, posting("Java Developer", "java"))

			Convey("Then it starts over", func() {
				So(cache.Len(), ShouldEqual, 1)
				So(inner.calls, ShouldEqual, 3)
			})
		})

		Convey("When hashing profiles", func() {
			q := p
			q.ExperienceYears = years(1)

			Convey("Then any scoring input changes the hash", func() {
				So(scoring.ProfileHash(p), ShouldNotEqual, scoring.ProfileHash(q))
				So(scoring.ProfileHash(p), ShouldEqual, scoring.ProfileHash(p))
				So(scoring.PostingHash(a.Representative), ShouldNotEqual, scoring.PostingHash(posting("Go Developer", "other").Representative))
			})
		})
	})
}
