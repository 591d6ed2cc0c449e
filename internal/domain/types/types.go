// Package types contains the result row handed to export and API consumers.
package types

import (
	"slices"

	"github.com/okian/jobscout/internal/domain/model"
)

// DateLayout is the posted_date format.
const DateLayout = "2006-01-02"

// ResultRow is one ranked posting. Field names and order are stable.
type ResultRow struct {
	MatchScore      int                `json:"match_score"`
	Title           string             `json:"title"`
	Company         string             `json:"company"`
	PlatformSources []string           `json:"platform_sources"`
	URL             string             `json:"url"`
	MatchedSkills   []string           `json:"matched_skills"`
	Location        string             `json:"location"`
	PostedDate      string             `json:"posted_date"`
	Description     string             `json:"description"`
	SubScores       map[string]float64 `json:"sub_scores,omitempty"`
}

// FromScored flattens a scored posting. An unknown date is an empty string.
func FromScored(sp model.ScoredPosting) ResultRow {
	r := sp.Representative
	row := ResultRow{
		MatchScore:      sp.MatchScore,
		Title:           r.Title,
		Company:         r.Company,
		PlatformSources: slices.Clone(sp.Sources),
		URL:             r.URL,
		MatchedSkills:   slices.Clone(sp.MatchedSkills),
		Location:        r.Location,
		Description:     r.Description,
		SubScores:       sp.SubScores,
	}
	if row.PlatformSources == nil {
		row.PlatformSources = []string{}
	}
	if row.MatchedSkills == nil {
		row.MatchedSkills = []string{}
	}
	if r.PostedAt != nil {
		row.PostedDate = r.PostedAt.Format(DateLayout)
	}
	return row
}

// Rows converts ranked postings, keeping their order.
func Rows(in []model.ScoredPosting) []ResultRow {
	out := make([]ResultRow, 0, len(in))
	for _, sp := range in {
		out = append(out, FromScored(sp))
	}
	return out
}
