// Package extract provides small, typed extraction strategies over goquery
// selections, replacing attribute-or-text-or-nothing fallback chains.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy extracts an optional value from a selection; it returns ok=false
// when it has nothing to contribute.
type Strategy func(*goquery.Selection) (string, bool)

// FirstMatch tries each strategy in order and returns the first non-empty
// result, short-circuiting on success.
func FirstMatch(sel *goquery.Selection, strategies ...Strategy) string {
	for _, strat := range strategies {
		if v, ok := strat(sel); ok && v != "" {
			return v
		}
	}
	return ""
}

// Attr returns a strategy reading the given attribute.
func Attr(name string) Strategy {
	return func(s *goquery.Selection) (string, bool) {
		v, ok := s.Attr(name)
		return strings.TrimSpace(v), ok
	}
}

// Text returns a strategy reading the collapsed visible text.
func Text() Strategy {
	return func(s *goquery.Selection) (string, bool) {
		return Collapse(s.Text()), true
	}
}

// FirstText returns the collapsed text of the first element matching any of
// the comma-separated candidate selectors under root, or "".
func FirstText(root *goquery.Selection, selector string) string {
	el := root.Find(selector).First()
	if el.Length() == 0 {
		return ""
	}
	return Collapse(el.Text())
}

// Collapse normalizes all runs of whitespace in s to single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
