package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/jobscout/internal/adapters/fetch"
	"github.com/okian/jobscout/internal/domain/model"
)

const noFluffJobsBase = "https://nofluffjobs.com"

var noFluffJobsCards = cardSpec{
	cards:       mustSel(`a.posting-list-item, div[data-cy="job-offer"]`),
	title:       mustSel(`h3, h4, span.title`),
	company:     mustSel(`span.company, div.company-name, h4.company-name`),
	location:    mustSel(`span.location, div.cities, span.tw-text-ellipsis`),
	link:        mustSel(`a[href]`),
	posted:      mustSel(`time, span.posted`),
	description: mustSel(`div.tiles, nfj-posting-item-tiles`),
}

type noFluffJobsResponse struct {
	Postings []noFluffJobsPosting `json:"postings"`
}

type noFluffJobsPosting struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Posted      int64  `json:"posted"`
	FullyRemote bool   `json:"fullyRemote"`
	Location    struct {
		Places []struct {
			City string `json:"city"`
		} `json:"places"`
	} `json:"location"`
	Basics struct {
		Description string `json:"description"`
	} `json:"basics"`
}

type noFluffJobs struct {
	fetcher fetch.Fetcher
	base    string
}

// NewNoFluffJobs builds the nofluffjobs.com adapter: search API, then
// listing page.
func NewNoFluffJobs(d Deps) Adapter {
	n := &noFluffJobs{fetcher: d.HTTP, base: d.baseURL(NameNoFluffJobs, noFluffJobsBase)}
	return NewChain(NameNoFluffJobs, []Strategy{
		{Name: "api", Run: n.api},
		pageStrategy("page", d.HTTP, noFluffJobsCards, n.base, d.now, n.pageURL),
	}, d.chainOptions(NameNoFluffJobs)...)
}

func noFluffJobsLocation(v model.LocationVariant) string {
	switch v.Kind {
	case model.VariantCountry:
		return ""
	case model.VariantRemote:
		return "remote"
	}
	return nativeSlug(v)
}

func (n *noFluffJobs) api(ctx context.Context, q model.SearchQuery) ([]model.RawPosting, error) {
	v := url.Values{}
	v.Set("criteria", terms(q))
	v.Set("page", "1")
	v.Set("sortBy", "newest")
	if loc := noFluffJobsLocation(q.Variant); loc != "" && loc != "remote" {
		v.Set("city", loc)
	}
	if q.Variant.Kind == model.VariantRemote {
		v.Set("remoteWork", "true")
	}

	body, err := fetchBody(ctx, n.fetcher, n.base+"/api/search/posting?"+v.Encode())
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode postings: %w", err)
	}
	var resp noFluffJobsResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return nil, fmt.Errorf("map postings: %w", err)
	}

	out := make([]model.RawPosting, 0, len(resp.Postings))
	for _, p := range resp.Postings {
		loc := "Poland"
		if len(p.Location.Places) > 0 && p.Location.Places[0].City != "" {
			loc = p.Location.Places[0].City
		}
		if p.FullyRemote {
			loc = "Remote"
		}
		rp := model.RawPosting{
			Title:       p.Title,
			Company:     p.Name,
			Location:    loc,
			Description: htmlText(p.Basics.Description),
			URL:         n.base + "/pl/job/" + p.URL,
			RawID:       p.ID,
		}
		if p.Posted > 0 {
			t := time.UnixMilli(p.Posted).UTC()
			rp.PostedAt = &t
		}
		out = append(out, rp)
	}
	return capPostings(out), nil
}

func (n *noFluffJobs) pageURL(q model.SearchQuery) string {
	u := n.base + "/pl/jobs/" + url.PathEscape(slug(terms(q)))
	if loc := noFluffJobsLocation(q.Variant); loc != "" {
		u += "/" + loc
	}
	return u
}
