package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"

	"github.com/okian/jobscout/internal/adapters/fetch"
	"github.com/okian/jobscout/internal/domain/model"
)

const (
	pracujBase = "https://www.pracuj.pl"
	// minArticleRunes is the shortest readable text accepted as a posting.
	minArticleRunes = 200
)

var pracujCards = cardSpec{
	cards:       mustSel(`div[data-test="default-offer"], div[data-test="premium-offer"], li[data-test="offer-item"]`),
	title:       mustSel(`h2[data-test="offer-title"]`),
	company:     mustSel(`h3[data-test="text-company-name"]`),
	location:    mustSel(`h4[data-test="text-region"]`),
	link:        mustSel(`a[data-test="link-offer"], h2[data-test="offer-title"] a`),
	posted:      mustSel(`[data-test="text-added"], span[data-test="text-published"]`),
	description: mustSel(`ul[data-test="offer-additional-info"], div[data-test="section-technologies"]`),
}

type pracuj struct {
	fetcher fetch.Fetcher
	base    string
}

// NewPracuj builds the pracuj.pl adapter: listing cards, then a readability
// extraction of the same page.
func NewPracuj(d Deps) Adapter {
	p := &pracuj{fetcher: d.HTTP, base: d.baseURL(NamePracuj, pracujBase)}
	return NewChain(NamePracuj, []Strategy{
		pageStrategy("page", d.HTTP, pracujCards, p.base, d.now, p.pageURL),
		{Name: "readability", Run: p.readable},
	}, d.chainOptions(NamePracuj)...)
}

func pracujLocation(v model.LocationVariant) string {
	if v.Kind != model.VariantCity {
		return ""
	}
	return nativeSlug(v)
}

func (p *pracuj) pageURL(q model.SearchQuery) string {
	u := p.base + "/praca/" + url.PathEscape(terms(q)) + ";kw"
	if loc := pracujLocation(q.Variant); loc != "" {
		u += "/" + loc + ";wp"
	}
	if q.Variant.Kind == model.VariantRemote {
		u += "?rw=1"
	}
	return u
}

// readable falls back to the main article of the listing page when the card
// markup is unknown.
func (p *pracuj) readable(ctx context.Context, q model.SearchQuery) ([]model.RawPosting, error) {
	pageURL := p.pageURL(q)
	body, err := fetchBody(ctx, p.fetcher, pageURL)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedMarkup, err)
	}

	text := strings.Join(strings.Fields(article.TextContent), " ")
	title := strings.TrimSpace(article.Title)
	if title == "" || utf8.RuneCountInString(text) < minArticleRunes {
		return nil, ErrUnrecognizedMarkup
	}
	return []model.RawPosting{{
		Title:       title,
		Company:     strings.TrimSpace(article.SiteName),
		Location:    q.Variant.Label,
		Description: text,
		URL:         pageURL,
	}}, nil
}
