package crawler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/hydrocare/harvester/internal/article"
	"github.com/hydrocare/harvester/internal/clock"
	"github.com/hydrocare/harvester/internal/listing"
)

// introKey labels the pre-heading text in a section map, where entries are
// otherwise keyed by heading.
const introKey = "INTRO"

// ExtractOne fetches a single article URL and returns the assembled record,
// bypassing listing pages, state and sinks. Version is fixed at 1.
func ExtractOne(ctx context.Context, fetch Fetcher, clk clock.Clock, rawURL string, keepHTML bool) (article.Article, error) {
	resp, err := fetch.Fetch(ctx, rawURL)
	if err != nil {
		return article.Article{}, err
	}
	doc, err := resp.Document()
	if err != nil {
		return article.Article{}, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return article.Article{}, fmt.Errorf("parse url: %w", err)
	}

	detail := article.ParseDetail(doc, u, keepHTML)
	art := article.Assemble(listing.Card{URL: rawURL}, detail, clk.Now())
	art.Version = 1
	return art, nil
}

// SectionMap flattens an article into heading-to-text form. The intro, when
// present and requested, appears under the INTRO key. Repeated headings have
// their texts joined by a blank line so no content is lost.
func SectionMap(art article.Article, includeIntro bool) map[string]string {
	out := make(map[string]string)
	if includeIntro && art.Intro != "" {
		out[introKey] = art.Intro
	}
	for _, sec := range art.Sections {
		if sec.Heading == nil || *sec.Heading == "" {
			continue
		}
		if prev, ok := out[*sec.Heading]; ok && prev != "" {
			if sec.Text != "" {
				out[*sec.Heading] = prev + "\n\n" + sec.Text
			}
			continue
		}
		out[*sec.Heading] = sec.Text
	}
	return out
}
