// Package scoring computes how well a job posting fits a resume profile.
package scoring

import (
	"math"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/profile"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Default scoring configuration constants.
const (
	defaultExperiencePenalty = 20
	neutralRoleScore         = 50
	maxScoreValue            = 100
)

// Scorer scores a canonical posting against a profile. Implementations must
// be pure: the same inputs always give the same result.
type Scorer interface {
	Score(p model.Profile, c model.CanonicalPosting) model.ScoredPosting
}

// Matcher is the weighted multi-factor Scorer.
type Matcher struct {
	weights  Weights
	taxonomy *profile.Taxonomy
	glossary *textnorm.Glossary
	penalty  float64
}

// NewMatcher creates a Matcher with the default weights, skill taxonomy and
// Polish glossary.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		weights:  DefaultWeights(),
		taxonomy: profile.DefaultTaxonomy(),
		glossary: textnorm.DefaultGlossary(),
		penalty:  defaultExperiencePenalty,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Weights returns the weight table in use.
func (m *Matcher) Weights() Weights { return m.weights }

// posting holds the translated and normalized views of one posting shared
// by the factors.
type posting struct {
	title       string
	description string
	descTokens  []string
	keywords    map[string]struct{}
	// required is the experience the posting asks for; ok is false when it
	// states none.
	required   float64
	requiredOK bool
}

func (m *Matcher) preparePosting(r model.RawPosting) posting {
	rawTitle := m.glossary.Translate(r.Title)
	rawDesc := m.glossary.Translate(r.Description)
	desc := textnorm.Normalize(rawDesc)
	title := textnorm.Normalize(rawTitle)
	text := textnorm.Content(textnorm.Tokens(title + " " + desc))
	required, ok := requiredYears(rawTitle, rawDesc)
	return posting{
		title:       title,
		description: desc,
		descTokens:  textnorm.Tokens(desc),
		keywords:    textnorm.Set(profile.Keywords(text)),
		required:    required,
		requiredOK:  ok,
	}
}

// Score computes every factor and their weighted sum.
func (m *Matcher) Score(p model.Profile, c model.CanonicalPosting) model.ScoredPosting {
	post := m.preparePosting(c.Representative)
	matched, skills := m.skillsMatch(p, post)

	sub := map[string]float64{
		FactorDescription: descriptionContent(p, post),
		FactorSemantic:    semanticSimilarity(p, post),
		FactorSkills:      skills,
		FactorKeywords:    keywordsMatch(p, post),
		FactorExperience:  m.experienceCompatibility(p, post),
		FactorRole:        roleRelevance(p, post),
	}

	var total float64
	for _, f := range Factors {
		total += m.weights.Of(f) * sub[f]
	}

	return model.ScoredPosting{
		CanonicalPosting: c,
		MatchScore:       clampScore(total),
		SubScores:        sub,
		MatchedSkills:    matched,
	}
}

func clampScore(v float64) int {
	r := int(math.Round(v))
	switch {
	case r < 0:
		return 0
	case r > maxScoreValue:
		return maxScoreValue
	}
	return r
}

func capScore(v float64) float64 {
	return math.Max(0, math.Min(maxScoreValue, v))
}
