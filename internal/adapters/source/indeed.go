package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/okian/jobscout/internal/adapters/fetch"
	"github.com/okian/jobscout/internal/domain/model"
)

const indeedBase = "https://pl.indeed.com"

var indeedCards = cardSpec{
	cards:       mustSel(`div.job_seen_beacon, div.jobsearch-SerpJobCard, div[data-testid="job-card"]`),
	title:       mustSel(`h2.jobTitle span[title], h2.jobTitle, h2.title`),
	company:     mustSel(`[data-testid="company-name"], span.companyName, span.company`),
	location:    mustSel(`[data-testid="text-location"], div.companyLocation, div.location`),
	link:        mustSel(`a.jcs-JobTitle, h2 a[href]`),
	posted:      mustSel(`span.date, [data-testid="myJobsStateDate"]`),
	description: mustSel(`div.job-snippet, [data-testid="jobsnippet_footer"]`),
}

type indeed struct {
	fetcher fetch.Fetcher
	base    string
}

// NewIndeed builds the Indeed adapter: RSS feed, then search page.
func NewIndeed(d Deps) Adapter {
	i := &indeed{fetcher: d.HTTP, base: d.baseURL(NameIndeed, indeedBase)}
	return NewChain(NameIndeed, []Strategy{
		{Name: "rss", Run: i.rss},
		pageStrategy("page", d.HTTP, indeedCards, i.base, d.now, i.pageURL),
	}, d.chainOptions(NameIndeed)...)
}

func indeedLocation(v model.LocationVariant) string {
	switch v.Kind {
	case model.VariantCountry:
		return ""
	case model.VariantRemote:
		return "Remote"
	}
	if v.NativeName != "" {
		return v.NativeName
	}
	return v.Label
}

func indeedParams(q model.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("q", terms(q))
	v.Set("l", indeedLocation(q.Variant))
	v.Set("sort", "date")
	return v
}

func (i *indeed) rss(ctx context.Context, q model.SearchQuery) ([]model.RawPosting, error) {
	v := indeedParams(q)
	v.Set("fromage", "14")
	body, err := fetchBody(ctx, i.fetcher, i.base+"/rss?"+v.Encode())
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]model.RawPosting, 0, len(feed.Items))
	for _, it := range feed.Items {
		title, company, loc := splitIndeedTitle(it.Title)
		p := model.RawPosting{
			Title:       title,
			Company:     company,
			Location:    loc,
			Description: htmlText(it.Description),
			URL:         it.Link,
			RawID:       it.GUID,
		}
		if it.PublishedParsed != nil {
			t := it.PublishedParsed.UTC()
			p.PostedAt = &t
		}
		out = append(out, p)
	}
	return capPostings(out), nil
}

// splitIndeedTitle splits "Title - Company - Location" feed titles. Extra
// dashes stay in the job title.
func splitIndeedTitle(s string) (title, company, loc string) {
	parts := strings.Split(s, " - ")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case len(parts) >= 3:
		n := len(parts)
		return strings.Join(parts[:n-2], " - "), parts[n-2], parts[n-1]
	case len(parts) == 2:
		return parts[0], parts[1], ""
	}
	return strings.TrimSpace(s), "", ""
}

func (i *indeed) pageURL(q model.SearchQuery) string {
	return i.base + "/jobs?" + indeedParams(q).Encode()
}
