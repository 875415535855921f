// Package listing extracts article reference cards from a listing page.
package listing

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hydrocare/harvester/internal/extract"
	"github.com/hydrocare/harvester/internal/segment"
)

// Candidate selectors for the detail-page link, tried in order.
var linkSelectors = []string{"h2 a", "h3 a", "a.more-link", "a.read-more"}

const (
	containerSelector = "article"
	excerptSelector   = ".entry-summary, .post-excerpt, .excerpt, p"
	categorySelector  = "a[rel='category tag'], .cat-links a"
)

// Card is a listing-page reference to one article, captured before the
// detail fetch. All fields except URL are optional.
type Card struct {
	URL      string
	Title    string
	Excerpt  string
	Category string
	Date     string
	Image    *segment.Image
}

// Parse extracts the ordered, URL-deduplicated sequence of cards from a
// listing document. pageURL resolves relative links; containers without a
// resolvable absolute link are discarded. An empty result is a value, not an
// error: the orchestrator treats it as the end of pagination.
func Parse(doc *goquery.Document, pageURL *url.URL) []Card {
	var cards []Card
	seen := make(map[string]struct{})

	doc.Find(containerSelector).Each(func(_ int, container *goquery.Selection) {
		card, ok := parseCard(container, pageURL)
		if !ok {
			return
		}
		if _, dup := seen[card.URL]; dup {
			return
		}
		seen[card.URL] = struct{}{}
		cards = append(cards, card)
	})
	return cards
}

func parseCard(container *goquery.Selection, pageURL *url.URL) (Card, bool) {
	link, href := findLink(container)
	if link == nil {
		return Card{}, false
	}
	abs, ok := resolve(pageURL, href)
	if !ok {
		return Card{}, false
	}

	card := Card{
		URL:      abs,
		Title:    extract.Collapse(link.Text()),
		Excerpt:  extract.FirstText(container, excerptSelector),
		Category: extract.FirstText(container, categorySelector),
	}

	if t := container.Find("time").First(); t.Length() > 0 {
		// Prefer the machine-readable attribute over the rendered date.
		card.Date = extract.FirstMatch(t, extract.Attr("datetime"), extract.Text())
	}
	if img := container.Find("img").First(); img.Length() > 0 {
		src := extract.FirstMatch(img, extract.Attr("src"), extract.Attr("data-lazy-src"))
		if src != "" {
			alt, _ := img.Attr("alt")
			card.Image = &segment.Image{Src: src, Alt: strings.TrimSpace(alt)}
		}
	}
	return card, true
}

func findLink(container *goquery.Selection) (*goquery.Selection, string) {
	for _, sel := range linkSelectors {
		link := container.Find(sel).First()
		if link.Length() == 0 {
			continue
		}
		if href, ok := link.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return link, strings.TrimSpace(href)
		}
	}
	return nil, ""
}

// resolve turns href into an absolute http(s) URL relative to base.
func resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if (ref.Scheme != "http" && ref.Scheme != "https") || ref.Host == "" {
		return "", false
	}
	return ref.String(), true
}
