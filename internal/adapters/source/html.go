package source

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/okian/jobscout/internal/domain/model"
)

// cardSpec describes where a listing page keeps its job cards. Each field is
// a CSS selector group; the first match inside a card wins.
type cardSpec struct {
	cards       cascadia.Selector
	title       cascadia.Selector
	company     cascadia.Selector
	location    cascadia.Selector
	link        cascadia.Selector
	posted      cascadia.Selector
	description cascadia.Selector
}

func parseHTML(body []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(body))
}

// scrapeCards extracts postings from every card in doc. Cards without a
// title are skipped.
func scrapeCards(doc *html.Node, spec cardSpec, base string, now nowFunc) []model.RawPosting {
	var out []model.RawPosting
	for _, card := range spec.cards.MatchAll(doc) {
		title := textOf(first(card, spec.title))
		if title == "" {
			continue
		}
		p := model.RawPosting{
			Title:       title,
			Company:     textOf(first(card, spec.company)),
			Location:    textOf(first(card, spec.location)),
			Description: textOf(first(card, spec.description)),
		}

		link := first(card, spec.link)
		if link == nil && card.Data == "a" {
			link = card
		}
		if href := attr(link, "href"); href != "" {
			p.URL = resolve(base, href)
		}

		if t := first(card, spec.posted); t != nil {
			raw := attr(t, "datetime")
			if raw == "" {
				raw = textOf(t)
			}
			p.PostedAt = ParsePostedDate(raw, now())
		}
		out = append(out, p)
	}
	return out
}

func first(n *html.Node, sel cascadia.Selector) *html.Node {
	if n == nil || sel == nil {
		return nil
	}
	return sel.MatchFirst(n)
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// textOf returns the visible text under n with whitespace collapsed.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// htmlText strips markup from an HTML fragment.
func htmlText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return textOf(doc)
}

func resolve(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(u).String()
}
