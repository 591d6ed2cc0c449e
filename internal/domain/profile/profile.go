// Package profile turns free-text resumes into structured profiles.
package profile

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Default extractor configuration constants.
const (
	defaultMaxRoles = 10
)

// Extractor derives profiles from resume text. It is safe for concurrent use.
type Extractor struct {
	taxonomy *Taxonomy
	now      func() time.Time
	maxRoles int
}

// New creates an Extractor with the default taxonomy and the wall clock.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		taxonomy: DefaultTaxonomy(),
		now:      time.Now,
		maxRoles: defaultMaxRoles,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Taxonomy returns the skill table in use.
func (e *Extractor) Taxonomy() *Taxonomy { return e.taxonomy }

// Extract builds a profile. It fails only when text has no content tokens
// once stopwords are removed; low-quality input otherwise yields a sparse
// profile rather than an error.
func (e *Extractor) Extract(text string) (model.Profile, error) {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return model.Profile{}, fmt.Errorf("%w: resume text empty", model.ErrProfileExtraction)
	}
	content := textnorm.Content(textnorm.Tokens(normalized))
	if len(content) == 0 {
		return model.Profile{}, fmt.Errorf("%w: resume text has no extractable tokens", model.ErrProfileExtraction)
	}

	return model.Profile{
		Keywords:        Keywords(content),
		Skills:          e.taxonomy.Match(normalized),
		TargetRoles:     targetRoles(text, e.maxRoles),
		ExperienceYears: experienceYears(text, e.now()),
		RawText:         normalized,
	}, nil
}

// Keywords returns the sorted set of content unigrams, bigrams and trigrams.
func Keywords(content []string) []string {
	set := make(map[string]struct{}, len(content)*3)
	for n := 1; n <= 3; n++ {
		for _, g := range textnorm.NGrams(content, n) {
			set[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
