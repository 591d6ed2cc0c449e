package source

import (
	"context"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/okian/jobscout/internal/adapters/fetch"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/textnorm"
)

// Platform names.
const (
	NameJustJoinIT  = "justjoinit"
	NameNoFluffJobs = "nofluffjobs"
	NameLinkedIn    = "linkedin"
	NameIndeed      = "indeed"
	NamePracuj      = "pracuj"
)

// maxPerQuery caps postings kept from one strategy run.
const maxPerQuery = 50

func fetchBody(ctx context.Context, f fetch.Fetcher, rawURL string) ([]byte, error) {
	if f == nil {
		return nil, ErrNoFetcher
	}
	page, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return page.Body, nil
}

// pageStrategy scrapes job cards from a listing page built by pageURL.
func pageStrategy(name string, f fetch.Fetcher, spec cardSpec, base string, now nowFunc, pageURL func(model.SearchQuery) string) Strategy {
	return Strategy{
		Name: name,
		Run: func(ctx context.Context, q model.SearchQuery) ([]model.RawPosting, error) {
			body, err := fetchBody(ctx, f, pageURL(q))
			if err != nil {
				return nil, err
			}
			doc, err := parseHTML(body)
			if err != nil {
				return nil, err
			}
			if len(spec.cards.MatchAll(doc)) == 0 {
				return nil, ErrUnrecognizedMarkup
			}
			return capPostings(scrapeCards(doc, spec, base, now)), nil
		},
	}
}

func capPostings(in []model.RawPosting) []model.RawPosting {
	if len(in) > maxPerQuery {
		return in[:maxPerQuery]
	}
	return in
}

func terms(q model.SearchQuery) string {
	return strings.Join(q.Keywords, " ")
}

// slug folds s to lower-case ASCII words joined by dashes.
func slug(s string) string {
	return strings.ReplaceAll(textnorm.Normalize(s), " ", "-")
}

// nativeSlug prefers the local spelling of a city ("Warszawa" -> "warszawa").
func nativeSlug(v model.LocationVariant) string {
	if v.NativeName != "" {
		return slug(v.NativeName)
	}
	if v.City != "" {
		return slug(v.City)
	}
	return slug(v.Label)
}

// mentionsAny reports whether text names any of terms. No terms matches all.
func mentionsAny(text string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	norm := textnorm.Normalize(text)
	for _, t := range terms {
		if textnorm.ContainsPhrase(norm, textnorm.Normalize(t)) {
			return true
		}
	}
	return false
}

func mustSel(sel string) cascadia.Selector {
	return cascadia.MustCompile(sel)
}
