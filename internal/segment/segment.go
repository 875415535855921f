// Package segment decomposes an article body into an ordered sequence of
// structural sections keyed by h2-h4 headings.
package segment

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// strippedSelector matches non-content chrome removed before segmentation.
const strippedSelector = "script, style, noscript, form, nav, header, footer, aside, iframe"

// wordRE matches Unicode word tokens; the source corpus is French, so ASCII
// \w would undercount accented words.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// HeadingLevel is the recognized heading depth of a section.
type HeadingLevel int

// Heading depths recognized as section boundaries.
const (
	LevelH2 HeadingLevel = 2
	LevelH3 HeadingLevel = 3
	LevelH4 HeadingLevel = 4
)

// Image is one image reference within a section or article.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Section is one structural unit of an article body. The first section of a
// document has a nil Heading iff content precedes the first heading.
type Section struct {
	Heading   *string      `json:"heading"`
	Level     HeadingLevel `json:"level,omitempty"`
	HTML      string       `json:"html,omitempty"`
	Text      string       `json:"text"`
	Lists     [][]string   `json:"lists"`
	Tables    [][][]string `json:"tables"`
	Images    []Image      `json:"images"`
	WordCount int          `json:"word_count"`
}

// Strip removes script/style/nav and similar chrome from the selection,
// in place. Callers strip once before segmenting or extracting links.
func Strip(sel *goquery.Selection) {
	sel.Find(strippedSelector).Remove()
}

// Segment walks the content subtree depth-first and splits it into sections.
// Every h2/h3/h4, at any nesting depth, closes the current section and opens
// a new one; all other element nodes accumulate into the open section.
// A heading with no following content still yields a (empty) section.
func Segment(content *goquery.Selection, keepRaw bool) []Section {
	if content == nil || content.Length() == 0 {
		return nil
	}

	var (
		sections   []Section
		buf        []*html.Node
		curHeading *string
		curLevel   HeadingLevel
	)

	flush := func() {
		if len(buf) == 0 && curHeading == nil {
			return
		}
		sections = append(sections, buildSection(curHeading, curLevel, buf, keepRaw))
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if lvl, ok := headingLevel(c); ok {
				flush()
				buf = nil
				heading := collapseText(c)
				curHeading = &heading
				curLevel = lvl
				continue
			}
			// Containers hiding a heading are descended into rather than
			// buffered whole, so nested headings still open sections.
			if containsHeading(c) {
				walk(c)
				continue
			}
			buf = append(buf, c)
		}
	}

	for _, n := range content.Nodes {
		walk(n)
	}
	flush()
	return sections
}

func buildSection(heading *string, level HeadingLevel, nodes []*html.Node, keepRaw bool) Section {
	sec := Section{
		Heading: heading,
		Lists:   [][]string{},
		Tables:  [][][]string{},
		Images:  []Image{},
	}
	if heading != nil {
		sec.Level = level
	}

	var (
		textParts []string
		raw       strings.Builder
		seen      = make(map[string]struct{})
	)
	for _, n := range nodes {
		if keepRaw {
			_ = html.Render(&raw, n)
		}
		if t := collapseText(n); t != "" {
			textParts = append(textParts, t)
		}
		// Lists and tables are scoped to the buffered nodes themselves so
		// content owned by a nested sub-structure is not double-counted.
		switch n.DataAtom {
		case atom.Ul, atom.Ol:
			if items := listItems(n); len(items) > 0 {
				sec.Lists = append(sec.Lists, items)
			}
		case atom.Table:
			if rows := tableRows(n); len(rows) > 0 {
				sec.Tables = append(sec.Tables, rows)
			}
		}
		collectImages(n, seen, &sec.Images)
	}

	sec.Text = strings.Join(textParts, "\n")
	sec.HTML = raw.String()
	sec.WordCount = WordCount(sec.Text)
	return sec
}

// WordCount counts Unicode word tokens in s.
func WordCount(s string) int {
	return len(wordRE.FindAllStringIndex(s, -1))
}

func headingLevel(n *html.Node) (HeadingLevel, bool) {
	switch n.DataAtom {
	case atom.H2:
		return LevelH2, true
	case atom.H3:
		return LevelH3, true
	case atom.H4:
		return LevelH4, true
	default:
		return 0, false
	}
}

func containsHeading(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if _, ok := headingLevel(c); ok {
			return true
		}
		if containsHeading(c) {
			return true
		}
	}
	return false
}

// collapseText extracts the visible text of n, whitespace-collapsed, with
// text runs from distinct nodes joined by single spaces.
func collapseText(n *html.Node) string {
	var parts []string
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, strings.Join(strings.Fields(t), " "))
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(parts, " ")
}

func listItems(list *html.Node) []string {
	var items []string
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		if t := collapseText(c); t != "" {
			items = append(items, t)
		}
	}
	return items
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == atom.Tr {
				if cells := rowCells(c); len(cells) > 0 {
					rows = append(rows, cells)
				}
				continue
			}
			visit(c)
		}
	}
	visit(table)
	return rows
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Th || c.DataAtom == atom.Td {
			cells = append(cells, collapseText(c))
		}
	}
	return cells
}

func collectImages(n *html.Node, seen map[string]struct{}, out *[]Image) {
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && node.DataAtom == atom.Img {
			src := attrOr(node, "src", attr(node, "data-lazy-src"))
			if src != "" {
				if _, dup := seen[src]; !dup {
					seen[src] = struct{}{}
					*out = append(*out, Image{Src: src, Alt: strings.TrimSpace(attr(node, "alt"))})
				}
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func attrOr(n *html.Node, key, fallback string) string {
	if v := attr(n, key); v != "" {
		return v
	}
	return fallback
}
