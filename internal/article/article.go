// Package article assembles the full export record for one harvested page.
package article

import (
	"strings"
	"time"

	"github.com/hydrocare/harvester/internal/fingerprint"
	"github.com/hydrocare/harvester/internal/listing"
	"github.com/hydrocare/harvester/internal/segment"
)

// Article is the complete exported record for one page: listing-card fields,
// detail-page fields, structural sections and the change-detection envelope.
type Article struct {
	URL          string `json:"url"`
	CanonicalURL string `json:"canonical_url,omitempty"`
	Slug         string `json:"slug"`

	ListingTitle    string         `json:"listing_title,omitempty"`
	ListingExcerpt  string         `json:"listing_excerpt,omitempty"`
	ListingDate     string         `json:"listing_date,omitempty"`
	ListingCategory string         `json:"listing_category,omitempty"`
	ListingImage    *segment.Image `json:"listing_image,omitempty"`

	Title           string   `json:"title"`
	Author          string   `json:"author,omitempty"`
	PublishedAt     string   `json:"published_at,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`

	Intro     string            `json:"intro"`
	Sections  []segment.Section `json:"sections"`
	WordCount int               `json:"word_count"`

	Images         []segment.Image `json:"images"`
	InternalLinks  []string        `json:"internal_links"`
	ExternalLinks  []string        `json:"external_links"`
	AffiliateLinks []string        `json:"affiliate_links"`

	ContentHash  string    `json:"content_hash"`
	Version      int       `json:"version"`
	PreviousHash string    `json:"previous_hash,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// Assemble merges a listing card and its detail extraction into one record.
// Version and PreviousHash stay zero-valued here; the orchestrator fills
// them once the change decision is made.
func Assemble(card listing.Card, d Detail, scrapedAt time.Time) Article {
	body := FingerprintBody(d.Intro, d.Sections)

	art := Article{
		URL:          card.URL,
		CanonicalURL: d.CanonicalURL,
		Slug:         Slug(card.URL),

		ListingTitle:    card.Title,
		ListingExcerpt:  card.Excerpt,
		ListingDate:     card.Date,
		ListingCategory: card.Category,
		ListingImage:    card.Image,

		Title:           d.Title,
		Author:          d.Author,
		PublishedAt:     d.PublishedAt,
		MetaDescription: d.MetaDescription,
		Categories:      d.Categories,
		Tags:            d.Tags,

		Intro:    d.Intro,
		Sections: d.Sections,

		Images:         d.Images,
		InternalLinks:  d.InternalLinks,
		ExternalLinks:  d.ExternalLinks,
		AffiliateLinks: d.AffiliateLinks,

		ContentHash: fingerprint.New(d.Title, body),
		ScrapedAt:   scrapedAt,
	}
	if art.Title == "" {
		art.Title = card.Title
	}
	art.WordCount = segment.WordCount(art.Title + "\n" + body)
	return art
}

// FingerprintBody builds the canonical body text hashed for change
// detection: the intro followed by every headed section's text, blank
// parts dropped, joined by blank lines. Markup-only edits do not move it.
func FingerprintBody(intro string, sections []segment.Section) string {
	parts := make([]string, 0, len(sections)+1)
	if intro != "" {
		parts = append(parts, intro)
	}
	for _, sec := range sections {
		if sec.Heading == nil {
			continue
		}
		if sec.Text != "" {
			parts = append(parts, sec.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Slug derives a stable identifier from the last non-empty path segment of
// rawURL, falling back to the host for root URLs.
func Slug(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		if seg := trimmed[i+1:]; seg != "" {
			return seg
		}
	}
	return trimmed
}
