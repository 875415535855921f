package article

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hydrocare/harvester/internal/extract"
	"github.com/hydrocare/harvester/internal/segment"
)

const (
	titleSelector    = "h1.entry-title, h1"
	authorSelector   = ".author a, .byline a, a[rel='author'], span.author"
	contentSelector  = "article .entry-content, .entry-content, main"
	categorySelector = "a[rel='category tag']"
	tagSelector      = "a[rel='tag']"
)

// Detail holds everything extracted from one article detail page, before
// listing-card fields and versioning are folded in.
type Detail struct {
	Title           string
	CanonicalURL    string
	Author          string
	PublishedAt     string
	MetaDescription string
	Categories      []string
	Tags            []string
	Intro           string
	Sections        []segment.Section
	Images          []segment.Image
	InternalLinks   []string
	ExternalLinks   []string
	AffiliateLinks  []string
}

// ParseDetail extracts all detail-page fields from doc. pageURL classifies
// links as internal or external; keepRaw carries per-section HTML through.
// The title is read before chrome stripping because some themes nest it in
// a header element that stripping would remove.
func ParseDetail(doc *goquery.Document, pageURL *url.URL, keepRaw bool) Detail {
	d := Detail{
		Categories:     []string{},
		Tags:           []string{},
		Images:         []segment.Image{},
		InternalLinks:  []string{},
		ExternalLinks:  []string{},
		AffiliateLinks: []string{},
	}

	d.Title = extract.FirstText(doc.Selection, titleSelector)
	d.CanonicalURL, _ = doc.Find("link[rel='canonical']").First().Attr("href")
	d.CanonicalURL = strings.TrimSpace(d.CanonicalURL)
	d.MetaDescription = metaDescription(doc)

	segment.Strip(doc.Selection)

	d.Author = extract.FirstText(doc.Selection, authorSelector)
	if t := doc.Find("time").First(); t.Length() > 0 {
		d.PublishedAt = extract.FirstMatch(t, extract.Attr("datetime"), extract.Text())
	}
	d.Categories = uniqueTexts(doc.Find(categorySelector))
	d.Tags = uniqueTexts(doc.Find(tagSelector))

	content := doc.Find(contentSelector).First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	d.Sections = segment.Segment(content, keepRaw)
	if len(d.Sections) > 0 && d.Sections[0].Heading == nil {
		d.Intro = d.Sections[0].Text
	}

	d.Images = allImages(content)
	d.InternalLinks, d.ExternalLinks, d.AffiliateLinks = classifyLinks(content, pageURL)
	return d
}

func metaDescription(doc *goquery.Document) string {
	return extract.FirstMatch(doc.Selection,
		metaContent("meta[name='description']"),
		metaContent("meta[property='og:description']"),
	)
}

func metaContent(selector string) extract.Strategy {
	return func(s *goquery.Selection) (string, bool) {
		v, ok := s.Find(selector).First().Attr("content")
		return strings.TrimSpace(v), ok
	}
}

func uniqueTexts(sel *goquery.Selection) []string {
	out := []string{}
	seen := make(map[string]struct{})
	sel.Each(func(_ int, s *goquery.Selection) {
		t := extract.Collapse(s.Text())
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	})
	return out
}

func allImages(content *goquery.Selection) []segment.Image {
	out := []segment.Image{}
	seen := make(map[string]struct{})
	content.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := extract.FirstMatch(img, extract.Attr("src"), extract.Attr("data-lazy-src"))
		if src == "" {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		alt, _ := img.Attr("alt")
		out = append(out, segment.Image{Src: src, Alt: strings.TrimSpace(alt)})
	})
	return out
}

// classifyLinks buckets absolute links inside the content by destination.
// Amazon links land in the affiliate bucket on top of their internal or
// external classification; each bucket keeps first-occurrence order.
func classifyLinks(content *goquery.Selection, pageURL *url.URL) (internal, external, affiliate []string) {
	internal, external, affiliate = []string{}, []string{}, []string{}
	seenInt := make(map[string]struct{})
	seenExt := make(map[string]struct{})
	seenAff := make(map[string]struct{})

	content.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		ref, err := url.Parse(href)
		if err != nil || (ref.Scheme != "http" && ref.Scheme != "https") || ref.Host == "" {
			return
		}

		if isAffiliate(ref) {
			if _, dup := seenAff[href]; !dup {
				seenAff[href] = struct{}{}
				affiliate = append(affiliate, href)
			}
		}
		if pageURL != nil && sameHost(ref.Host, pageURL.Host) {
			if _, dup := seenInt[href]; !dup {
				seenInt[href] = struct{}{}
				internal = append(internal, href)
			}
			return
		}
		if _, dup := seenExt[href]; !dup {
			seenExt[href] = struct{}{}
			external = append(external, href)
		}
	})
	return internal, external, affiliate
}

func isAffiliate(u *url.URL) bool {
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "amzn.to") || strings.Contains(host, "amazon.")
}

func sameHost(a, b string) bool {
	trim := func(h string) string { return strings.TrimPrefix(strings.ToLower(h), "www.") }
	return trim(a) == trim(b)
}
