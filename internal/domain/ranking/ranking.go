// Package ranking filters scored postings and puts them in their final order.
package ranking

import (
	"sort"
	"time"

	"github.com/okian/jobscout/internal/domain/model"
)

const day = 24 * time.Hour

// Filter keeps postings scoring at least minMatch whose age in whole days is
// at most maxAgeDays. Postings without a date are kept.
func Filter(in []model.ScoredPosting, minMatch, maxAgeDays int, now time.Time) []model.ScoredPosting {
	out := make([]model.ScoredPosting, 0, len(in))
	for _, sp := range in {
		if sp.MatchScore < minMatch {
			continue
		}
		if posted := sp.Representative.PostedAt; posted != nil {
			if int(now.Sub(*posted)/day) > maxAgeDays {
				continue
			}
		}
		out = append(out, sp)
	}
	return out
}

// Rank sorts in place by score descending, then newer date with known dates
// first, then title, then URL.
func Rank(postings []model.ScoredPosting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return Less(postings[i], postings[j])
	})
}

// Less reports whether a ranks before b.
func Less(a, b model.ScoredPosting) bool {
	if a.MatchScore != b.MatchScore {
		return a.MatchScore > b.MatchScore
	}
	da, db := a.Representative.PostedAt, b.Representative.PostedAt
	switch {
	case da != nil && db == nil:
		return true
	case da == nil && db != nil:
		return false
	case da != nil && db != nil && !da.Equal(*db):
		return da.After(*db)
	}
	if a.Representative.Title != b.Representative.Title {
		return a.Representative.Title < b.Representative.Title
	}
	return a.Representative.URL < b.Representative.URL
}
