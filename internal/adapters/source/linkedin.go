package source

import (
	"net/url"

	"github.com/okian/jobscout/internal/domain/model"
)

const linkedInBase = "https://www.linkedin.com"

var linkedInCards = cardSpec{
	cards:       mustSel(`div.base-card, div.job-search-card, li.jobs-search-results__list-item`),
	title:       mustSel(`h3.base-search-card__title, .job-card-list__title, h3`),
	company:     mustSel(`h4.base-search-card__subtitle, .job-card-container__company-name, h4`),
	location:    mustSel(`span.job-search-card__location, .job-card-container__metadata-item`),
	link:        mustSel(`a.base-card__full-link, a.job-card-list__title, a[href*="/jobs/view/"]`),
	posted:      mustSel(`time`),
	description: mustSel(`div.base-search-card__metadata, p.job-search-card__snippet`),
}

// NewLinkedIn builds the LinkedIn adapter: guest API fragment, public search
// page and, in enhanced mode, a rendered browser page.
func NewLinkedIn(d Deps) Adapter {
	base := d.baseURL(NameLinkedIn, linkedInBase)
	api := func(q model.SearchQuery) string {
		return base + "/jobs-guest/jobs/api/seeMoreJobPostings/search?" + linkedInParams(q).Encode()
	}
	page := func(q model.SearchQuery) string {
		return base + "/jobs/search?" + linkedInParams(q).Encode()
	}

	strategies := []Strategy{
		pageStrategy("guest-api", d.HTTP, linkedInCards, base, d.now, api),
		pageStrategy("public-page", d.HTTP, linkedInCards, base, d.now, page),
	}
	if d.Browser != nil {
		s := pageStrategy("browser", d.Browser, linkedInCards, base, d.now, page)
		s.EnhancedOnly = true
		s.Timeout = d.BrowserTimeout
		strategies = append(strategies, s)
	}
	return NewChain(NameLinkedIn, strategies, d.chainOptions(NameLinkedIn)...)
}

func linkedInLocation(v model.LocationVariant) string {
	switch v.Kind {
	case model.VariantCountry:
		return v.Country
	case model.VariantRemote:
		return v.Country
	}
	return v.Label
}

func linkedInParams(q model.SearchQuery) url.Values {
	v := url.Values{}
	v.Set("keywords", terms(q))
	v.Set("location", linkedInLocation(q.Variant))
	// Posted within the last week.
	v.Set("f_TPR", "r604800")
	v.Set("start", "0")
	if q.Variant.Kind == model.VariantRemote {
		v.Set("f_WT", "2")
	}
	return v
}
