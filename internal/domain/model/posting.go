// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// RawPosting is one listing as returned by one source for one query.
// Nothing is unique across sources.
type RawPosting struct {
	Source      string     `json:"source"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	URL         string     `json:"url"`
	RawID       string     `json:"raw_id,omitempty"`
}

// CanonicalPosting is the merged form of one real-world posting.
// Sources is ordered by first contribution and holds no duplicates.
type CanonicalPosting struct {
	Representative RawPosting `json:"representative"`
	Sources        []string   `json:"sources"`
}

// ScoredPosting is a canonical posting with its match score.
type ScoredPosting struct {
	CanonicalPosting
	MatchScore    int                `json:"match_score"`
	SubScores     map[string]float64 `json:"sub_scores"`
	MatchedSkills []string           `json:"matched_skills"`
}

// Profile is the structured view of a resume. It is never mutated after
// extraction.
type Profile struct {
	Keywords        []string `json:"keywords"`
	Skills          []string `json:"skills"`
	TargetRoles     []string `json:"target_roles"`
	ExperienceYears *float64 `json:"experience_years,omitempty"`
	RawText         string   `json:"-"`
}

// Location variant kinds.
const (
	VariantCity    = "city"
	VariantCountry = "country"
	VariantRemote  = "remote"
	VariantOpaque  = "opaque"
)

// LocationVariant is one concrete location a source is queried with.
type LocationVariant struct {
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	City        string `json:"city,omitempty"`
	NativeName  string `json:"native_name,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Key identifies the variant inside one session.
func (v LocationVariant) Key() string {
	return v.Kind + ":" + v.Label
}

// SearchQuery is a (source, location variant, keywords) tuple handed to one
// adapter. It lives only as long as the task that carries it.
type SearchQuery struct {
	Source   string          `json:"source"`
	Variant  LocationVariant `json:"variant"`
	Keywords []string        `json:"keywords"`
	Mode     ScraperMode     `json:"mode"`
}

// Key identifies the query inside one session.
func (q SearchQuery) Key() string {
	return q.Source + "|" + q.Variant.Key()
}

// Diagnostic describes why a source strategy produced nothing.
type Diagnostic struct {
	Source   string `json:"source"`
	Strategy string `json:"strategy"`
	Reason   string `json:"reason"`
	Location string `json:"location,omitempty"`
}

// Err returns the diagnostic as an error wrapping ErrSourceFailure.
func (d Diagnostic) Err() error {
	return fmt.Errorf("%w: %s/%s: %s", ErrSourceFailure, d.Source, d.Strategy, d.Reason)
}
