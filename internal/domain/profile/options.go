package profile

import "time"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithTaxonomy sets the skill table.
func WithTaxonomy(t *Taxonomy) Option {
	return func(e *Extractor) {
		if t != nil {
			e.taxonomy = t
		}
	}
}

// WithClock sets the clock used to close open-ended date ranges.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxRoles caps the number of target roles kept.
func WithMaxRoles(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxRoles = n
		}
	}
}
