package model

import (
	"fmt"
	"strings"
)

// ScraperMode selects how aggressively sources are scraped.
type ScraperMode string

// Scraper modes. Enhanced allows headless-browser strategies.
const (
	ModeEnhanced ScraperMode = "enhanced"
	ModeBasic    ScraperMode = "basic"
)

// Parameters are the caller-supplied knobs of one search session.
type Parameters struct {
	Location      string      `json:"location"`
	MinMatch      int         `json:"min_match"`
	MaxAgeDays    int         `json:"max_age_days"`
	IncludeRemote bool        `json:"include_remote"`
	ScraperMode   ScraperMode `json:"scraper_mode"`
}

// Normalize trims the location and fills an empty scraper mode.
func (p Parameters) Normalize() Parameters {
	p.Location = strings.TrimSpace(p.Location)
	if p.ScraperMode == "" {
		p.ScraperMode = ModeEnhanced
	}
	return p
}

// Validate reports the first invalid field wrapped in ErrValidation.
func (p Parameters) Validate() error {
	switch {
	case strings.TrimSpace(p.Location) == "":
		return fmt.Errorf("%w: location is required", ErrValidation)
	case p.MinMatch < 0 || p.MinMatch > 100:
		return fmt.Errorf("%w: min_match must be in [0,100], got %d", ErrValidation, p.MinMatch)
	case p.MaxAgeDays < 0:
		return fmt.Errorf("%w: max_age_days must not be negative, got %d", ErrValidation, p.MaxAgeDays)
	}
	switch p.ScraperMode {
	case "", ModeEnhanced, ModeBasic:
	default:
		return fmt.Errorf("%w: scraper_mode must be enhanced or basic, got %q", ErrValidation, p.ScraperMode)
	}
	return nil
}
