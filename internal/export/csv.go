package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hydrocare/harvester/internal/article"
	"github.com/hydrocare/harvester/internal/segment"
)

// csvHeader fixes the column order. Changing it breaks appending into files
// written by earlier versions, so columns are only ever added at the end.
var csvHeader = []string{
	"url",
	"slug",
	"title",
	"author",
	"published_at",
	"categories",
	"tags",
	"word_count",
	"sections",
	"images",
	"internal_links",
	"external_links",
	"affiliate_links",
	"content_hash",
	"version",
	"previous_hash",
	"scraped_at",
}

// CSV appends one flattened row per article for spreadsheet use. Multi-valued
// fields are pipe-joined; sections collapse to a compact JSON outline.
type CSV struct {
	f *os.File
	w *csv.Writer
}

// CSVPath returns dir/{name}_articles.csv.
func CSVPath(dir, name string) string {
	return filepath.Join(dir, name+"_articles.csv")
}

// NewCSV opens the CSV file at path for appending, writing the header row
// only when the file is new or empty.
func NewCSV(path string) (*CSV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	needHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needHeader = false
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}

	c := &CSV{f: f, w: csv.NewWriter(f)}
	if needHeader {
		if err := c.w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}
	return c, nil
}

// Write appends one row and flushes it, so an interrupted run still leaves
// complete rows behind.
func (c *CSV) Write(a article.Article) error {
	row := []string{
		a.URL,
		a.Slug,
		a.Title,
		a.Author,
		a.PublishedAt,
		strings.Join(a.Categories, "|"),
		strings.Join(a.Tags, "|"),
		strconv.Itoa(a.WordCount),
		sectionOutline(a.Sections),
		strings.Join(imageSrcs(a.Images), "|"),
		strings.Join(a.InternalLinks, "|"),
		strings.Join(a.ExternalLinks, "|"),
		strings.Join(a.AffiliateLinks, "|"),
		a.ContentHash,
		strconv.Itoa(a.Version),
		a.PreviousHash,
		a.ScrapedAt.Format(time.RFC3339),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("append csv row for %s: %w", a.URL, err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush csv row for %s: %w", a.URL, err)
	}
	return nil
}

// Close flushes any buffered rows and closes the file.
func (c *CSV) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

// sectionOutline renders the section structure as compact JSON, keeping the
// CSV one row per article while preserving the outline shape.
func sectionOutline(sections []segment.Section) string {
	type entry struct {
		Heading   *string `json:"heading"`
		Level     int     `json:"level,omitempty"`
		WordCount int     `json:"word_count"`
	}
	outline := make([]entry, 0, len(sections))
	for _, s := range sections {
		outline = append(outline, entry{Heading: s.Heading, Level: int(s.Level), WordCount: s.WordCount})
	}
	b, err := json.Marshal(outline)
	if err != nil {
		return ""
	}
	return string(b)
}

func imageSrcs(images []segment.Image) []string {
	srcs := make([]string, 0, len(images))
	for _, img := range images {
		srcs = append(srcs, img.Src)
	}
	return srcs
}
