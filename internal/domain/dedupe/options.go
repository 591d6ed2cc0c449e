package dedupe

// Option applies a configuration option to the seen-set.
type Option func(*seenSet)

// WithMaxSize sets the maximum number of keys kept in memory.
// If maxSize > 0: bounded mode with first-in first-out eviction.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(d *seenSet) {
		d.maxSize = maxSize
	}
}

// MergeOption applies a configuration option to the Merger.
type MergeOption func(*Merger)

// WithTitleThreshold sets the minimum title token overlap for two postings
// to be considered the same. Values outside (0,1] are ignored.
func WithTitleThreshold(th float64) MergeOption {
	return func(m *Merger) {
		if th > 0 && th <= 1 {
			m.threshold = th
		}
	}
}

// WithBlockPrefix sets how many leading characters of the normalized title
// form the blocking key. Zero blocks on company and location alone.
func WithBlockPrefix(n int) MergeOption {
	return func(m *Merger) {
		if n >= 0 {
			m.prefix = n
		}
	}
}

// WithBucketer sets the location bucketing function.
func WithBucketer(b Bucketer) MergeOption {
	return func(m *Merger) {
		if b != nil {
			m.bucket = b
		}
	}
}
