package dedupe

import (
	"strings"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/textnorm"
	"github.com/okian/jobscout/pkg/metrics"
)

// Default merge configuration constants.
const (
	defaultTitleThreshold = 0.8
	defaultBlockPrefix    = 4
)

// Bucketer maps a free-text location to its dedupe bucket.
type Bucketer func(location string) string

// Merger collapses postings that denote the same real-world job.
//
// Two postings are equivalent when their normalized titles overlap by at
// least the threshold, their companies match case-insensitively and their
// locations fall into the same bucket. Candidates are only compared within a
// block sharing company, bucket and title prefix.
//
// Blocking keeps merging near-linear at the price of recall: titles holding
// the same words in another order ("Developer Python", "Python Developer")
// land in different blocks and are never compared, even though their token
// overlap is 1.0. Boards keep their own title word order across reposts, so
// this limit is accepted. Shrink it with WithBlockPrefix.
type Merger struct {
	threshold float64
	prefix    int
	bucket    Bucketer
}

// NewMerger creates a Merger. Without WithBucketer the normalized location
// text is the bucket.
func NewMerger(opts ...MergeOption) *Merger {
	m := &Merger{
		threshold: defaultTitleThreshold,
		prefix:    defaultBlockPrefix,
		bucket:    textnorm.Normalize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// cluster is one canonical posting under construction.
type cluster struct {
	rep     model.RawPosting
	tokens  map[string]struct{}
	sources []string
	seen    map[string]struct{}
}

func (c *cluster) addSources(sources []string) {
	for _, s := range sources {
		if s == "" {
			continue
		}
		if _, ok := c.seen[s]; ok {
			continue
		}
		c.seen[s] = struct{}{}
		c.sources = append(c.sources, s)
	}
}

// Merge collapses raw postings into canonical postings. Input order is the
// adapter invocation order and decides representative ties and source order.
func (m *Merger) Merge(raws []model.RawPosting) []model.CanonicalPosting {
	items := make([]model.CanonicalPosting, 0, len(raws))
	for _, r := range raws {
		items = append(items, model.CanonicalPosting{Representative: r, Sources: []string{r.Source}})
	}
	out := m.MergeCanonical(items)
	metrics.RecordMergeResult(len(raws), len(out))
	return out
}

// MergeCanonical re-merges canonical postings, keeping their source sets.
// Passes repeat until nothing collapses, so applying it to its own output
// returns that output unchanged.
func (m *Merger) MergeCanonical(items []model.CanonicalPosting) []model.CanonicalPosting {
	for {
		next := m.pass(items)
		if len(next) == len(items) {
			return next
		}
		items = next
	}
}

func (m *Merger) pass(items []model.CanonicalPosting) []model.CanonicalPosting {
	clusters := make([]*cluster, 0, len(items))
	blocks := make(map[string][]int)

	for _, item := range items {
		title := textnorm.Normalize(item.Representative.Title)
		tokens := textnorm.Set(textnorm.Tokens(title))
		key := m.blockKey(item.Representative, title)

		var target *cluster
		for _, idx := range blocks[key] {
			if similarity(clusters[idx].tokens, tokens) >= m.threshold {
				target = clusters[idx]
				break
			}
		}

		if target == nil {
			c := &cluster{rep: item.Representative, tokens: tokens, seen: map[string]struct{}{}}
			c.addSources(item.Sources)
			blocks[key] = append(blocks[key], len(clusters))
			clusters = append(clusters, c)
			continue
		}

		// Strictly longer wins so the earliest seen keeps ties.
		if len(strings.TrimSpace(item.Representative.Description)) > len(strings.TrimSpace(target.rep.Description)) {
			target.rep = item.Representative
			target.tokens = tokens
		}
		target.addSources(item.Sources)
	}

	out := make([]model.CanonicalPosting, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, model.CanonicalPosting{Representative: c.rep, Sources: c.sources})
	}
	return out
}

func (m *Merger) blockKey(p model.RawPosting, normalizedTitle string) string {
	company := textnorm.Normalize(p.Company)
	compact := strings.ReplaceAll(normalizedTitle, " ", "")
	if r := []rune(compact); len(r) > m.prefix {
		compact = string(r[:m.prefix])
	}
	return company + "\x00" + m.bucket(p.Location) + "\x00" + compact
}

// similarity is the token overlap relative to the larger title.
func similarity(a, b map[string]struct{}) float64 {
	larger := len(a)
	if len(b) > larger {
		larger = len(b)
	}
	if larger == 0 {
		return 1
	}
	return float64(textnorm.Intersect(a, b)) / float64(larger)
}
