package scoring

import (
	"math"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// contextIndicators are action phrases that tie a resume to a description
// beyond shared nouns.
var contextIndicators = []string{
	"responsible for", "experience in", "worked with", "developed", "managed",
	"led", "implemented", "designed", "built", "created", "maintained",
	"collaborated", "analyzed", "optimized", "improved", "delivered",
}

// descriptionContent blends word, phrase and context overlap between the
// resume text and the description.
func descriptionContent(p model.Profile, post posting) float64 {
	if post.description == "" || p.RawText == "" {
		return 0
	}
	resumeTokens := textnorm.Tokens(p.RawText)

	words := 100 * textnorm.Jaccard(
		textnorm.Set(textnorm.Meaningful(resumeTokens)),
		textnorm.Set(textnorm.Meaningful(post.descTokens)),
	)
	phrases := phraseOverlap(resumeTokens, post.descTokens)
	contexts := contextOverlap(p.RawText, post.description)

	return capScore(0.40*words + 0.35*phrases + 0.25*contexts)
}

// phraseOverlap counts shared bigrams and trigrams, trigrams weighing 1.5.
func phraseOverlap(a, b []string) float64 {
	a2, b2 := textnorm.Set(textnorm.NGrams(a, 2)), textnorm.Set(textnorm.NGrams(b, 2))
	a3, b3 := textnorm.Set(textnorm.NGrams(a, 3)), textnorm.Set(textnorm.NGrams(b, 3))

	shared2 := textnorm.Intersect(a2, b2)
	shared3 := textnorm.Intersect(a3, b3)
	possible := len(a2) + len(b2) - shared2 + len(a3) + len(b3) - shared3
	if possible == 0 {
		return 0
	}
	return capScore(100 * (float64(shared2) + 1.5*float64(shared3)) / float64(possible))
}

func contextOverlap(resume, description string) float64 {
	var inResume, inDesc []string
	for _, ind := range contextIndicators {
		if textnorm.ContainsPhrase(resume, ind) {
			inResume = append(inResume, ind)
		}
		if textnorm.ContainsPhrase(description, ind) {
			inDesc = append(inDesc, ind)
		}
	}
	if len(inResume) == 0 || len(inDesc) == 0 {
		return 0
	}
	return 100 * textnorm.Jaccard(textnorm.Set(inResume), textnorm.Set(inDesc))
}

// skillsMatch returns the profile skills named in the description and the
// covered fraction scaled to 100.
func (m *Matcher) skillsMatch(p model.Profile, post posting) ([]string, float64) {
	matched := []string{}
	if len(p.Skills) == 0 {
		return matched, 0
	}
	for _, s := range p.Skills {
		if m.taxonomy.Mentions(post.description, s) {
			matched = append(matched, s)
		}
	}
	return matched, 100 * float64(len(matched)) / float64(len(p.Skills))
}

func keywordsMatch(p model.Profile, post posting) float64 {
	if len(p.Keywords) == 0 {
		return 0
	}
	hits := 0
	for _, k := range p.Keywords {
		if _, ok := post.keywords[k]; ok {
			hits++
		}
	}
	return 100 * float64(hits) / float64(len(p.Keywords))
}

func (m *Matcher) experienceCompatibility(p model.Profile, post posting) float64 {
	if p.ExperienceYears == nil || !post.requiredOK {
		return maxScoreValue
	}
	short := post.required - *p.ExperienceYears
	if short <= 0 {
		return maxScoreValue
	}
	return math.Max(0, maxScoreValue-m.penalty*short)
}

// roleRelevance is the best match of any target role against the title.
func roleRelevance(p model.Profile, post posting) float64 {
	if len(p.TargetRoles) == 0 {
		return neutralRoleScore
	}
	titleTokens := textnorm.Set(textnorm.Tokens(post.title))

	var best float64
	for _, role := range p.TargetRoles {
		norm := textnorm.Normalize(role)
		if textnorm.ContainsPhrase(post.title, norm) {
			return maxScoreValue
		}
		tokens := textnorm.Set(textnorm.Content(textnorm.Tokens(norm)))
		if len(tokens) == 0 {
			continue
		}
		score := 100 * float64(textnorm.Intersect(tokens, titleTokens)) / float64(len(tokens))
		best = math.Max(best, score)
	}
	return best
}
