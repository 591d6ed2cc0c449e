package scoring

import (
	"github.com/okian/jobscout/internal/domain/profile"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithWeights replaces the default weight table.
func WithWeights(w Weights) Option {
	return func(m *Matcher) {
		if len(w.w) > 0 {
			m.weights = w
		}
	}
}

// WithTaxonomy sets the skill table used to find profile skills in postings.
func WithTaxonomy(t *profile.Taxonomy) Option {
	return func(m *Matcher) {
		if t != nil {
			m.taxonomy = t
		}
	}
}

// WithGlossary sets the term table applied to posting titles and
// descriptions before scoring. An empty glossary disables translation.
func WithGlossary(g *textnorm.Glossary) Option {
	return func(m *Matcher) {
		if g != nil {
			m.glossary = g
		}
	}
}

// WithExperiencePenalty sets the points lost per year of missing experience.
func WithExperiencePenalty(points float64) Option {
	return func(m *Matcher) {
		if points >= 0 {
			m.penalty = points
		}
	}
}

// CacheOption applies a configuration option to the CachedScorer.
type CacheOption func(*CachedScorer)

// WithCacheSize bounds the number of memoized results. When full the cache
// is cleared.
func WithCacheSize(n int) CacheOption {
	return func(c *CachedScorer) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}
