package scoring

import (
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/pkg/metrics"
)

const defaultCacheSize = 10_000

// CachedScorer memoizes a Scorer by (profile hash, posting hash).
type CachedScorer struct {
	inner      Scorer
	mu         sync.Mutex
	entries    map[[2]uint64]model.ScoredPosting
	maxEntries int
}

// NewCachedScorer wraps inner. Safe for concurrent use when inner is.
func NewCachedScorer(inner Scorer, opts ...CacheOption) *CachedScorer {
	c := &CachedScorer{inner: inner, maxEntries: defaultCacheSize}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[[2]uint64]model.ScoredPosting, c.maxEntries)
	return c
}

// Score returns the memoized result or computes and stores it.
func (c *CachedScorer) Score(p model.Profile, cp model.CanonicalPosting) model.ScoredPosting {
	key := [2]uint64{ProfileHash(p), PostingHash(cp.Representative)}

	c.mu.Lock()
	hit, ok := c.entries[key]
	c.mu.Unlock()
	metrics.RecordScoreCache(ok)
	if ok {
		hit.CanonicalPosting = cp
		hit.SubScores = maps.Clone(hit.SubScores)
		hit.MatchedSkills = slices.Clone(hit.MatchedSkills)
		return hit
	}

	out := c.inner.Score(p, cp)

	c.mu.Lock()
	if len(c.entries) >= c.maxEntries {
		clear(c.entries)
	}
	stored := out
	stored.SubScores = maps.Clone(out.SubScores)
	stored.MatchedSkills = slices.Clone(out.MatchedSkills)
	c.entries[key] = stored
	c.mu.Unlock()
	return out
}

// Len is the number of memoized results.
func (c *CachedScorer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ProfileHash digests every profile field that influences a score.
func ProfileHash(p model.Profile) uint64 {
	d := xxhash.New()
	writeList(d, p.Keywords)
	writeList(d, p.Skills)
	writeList(d, p.TargetRoles)
	if p.ExperienceYears != nil {
		writeField(d, strconv.FormatFloat(*p.ExperienceYears, 'f', -1, 64))
	} else {
		writeField(d, "-")
	}
	writeField(d, p.RawText)
	return d.Sum64()
}

// PostingHash digests the posting fields read by the scorer.
func PostingHash(r model.RawPosting) uint64 {
	d := xxhash.New()
	writeField(d, r.Title)
	writeField(d, r.Company)
	writeField(d, r.Location)
	writeField(d, r.Description)
	return d.Sum64()
}

func writeList(d *xxhash.Digest, items []string) {
	writeField(d, strconv.Itoa(len(items)))
	for _, it := range items {
		writeField(d, it)
	}
}

func writeField(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(s)
	_, _ = d.Write([]byte{0})
}
