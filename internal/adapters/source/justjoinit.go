package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/jobscout/internal/adapters/fetch"
	"github.com/okian/jobscout/internal/domain/model"
)

const justJoinITBase = "https://justjoin.it"

var justJoinITCards = cardSpec{
	cards:       mustSel(`div[data-test="offer-item"], li.offer-item, a.offer-card`),
	title:       mustSel(`h2, h3, [data-test="offer-title"]`),
	company:     mustSel(`[data-test="company-name"], span.company, div.company-name`),
	location:    mustSel(`[data-test="offer-location"], span.location, div.city`),
	link:        mustSel(`a[href*="/offers/"], a[href*="/job-offer/"]`),
	posted:      mustSel(`time, span.published`),
	description: mustSel(`div.skills, ul.tags`),
}

type justJoinITOffer struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	City        string `json:"city"`
	Body        string `json:"body"`
	PublishedAt string `json:"published_at"`
	Remote      bool   `json:"remote"`
	Skills      []struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	} `json:"skills"`
}

type justJoinIT struct {
	fetcher fetch.Fetcher
	base    string
	now     nowFunc
}

// NewJustJoinIT builds the justjoin.it adapter: offers API, then listing page.
func NewJustJoinIT(d Deps) Adapter {
	j := &justJoinIT{fetcher: d.HTTP, base: d.baseURL(NameJustJoinIT, justJoinITBase), now: d.now}
	return NewChain(NameJustJoinIT, []Strategy{
		{Name: "api", Run: j.api},
		pageStrategy("page", d.HTTP, justJoinITCards, j.base, d.now, j.pageURL),
	}, d.chainOptions(NameJustJoinIT)...)
}

// justJoinITLocation maps a variant to the board's city slug.
func justJoinITLocation(v model.LocationVariant) string {
	switch v.Kind {
	case model.VariantCountry:
		return "all"
	case model.VariantRemote:
		return "remote"
	case model.VariantCity:
		if s := slug(v.City); s == "gdansk" {
			return "trojmiasto"
		}
	}
	return nativeSlug(v)
}

func (j *justJoinIT) api(ctx context.Context, q model.SearchQuery) ([]model.RawPosting, error) {
	body, err := fetchBody(ctx, j.fetcher, j.base+"/api/offers")
	if err != nil {
		return nil, err
	}
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode offers: %w", err)
	}
	var offers []justJoinITOffer
	if err := decodeJSON(raw, &offers); err != nil {
		return nil, fmt.Errorf("map offers: %w", err)
	}

	loc := justJoinITLocation(q.Variant)
	var out []model.RawPosting
	for _, o := range offers {
		haystack := o.Title
		for _, s := range o.Skills {
			haystack += " " + s.Name
		}
		if !mentionsAny(haystack, q.Keywords) {
			continue
		}
		city := slug(o.City)
		switch {
		case loc == "all":
		case loc == "remote" && o.Remote:
		case loc != "remote" && city != "" && strings.Contains(city, loc):
		default:
			continue
		}

		location := o.City
		if o.Remote && location == "" {
			location = "Remote"
		}
		out = append(out, model.RawPosting{
			Title:       o.Title,
			Company:     o.CompanyName,
			Location:    location,
			Description: htmlText(o.Body),
			PostedAt:    ParsePostedDate(o.PublishedAt, j.now()),
			URL:         j.base + "/offers/" + o.ID,
			RawID:       o.ID,
		})
		if len(out) >= maxPerQuery {
			break
		}
	}
	return out, nil
}

func (j *justJoinIT) pageURL(q model.SearchQuery) string {
	v := url.Values{}
	if t := terms(q); t != "" {
		v.Set("keyword", t)
	}
	return j.base + "/job-offers/" + justJoinITLocation(q.Variant) + "?" + v.Encode()
}
