// Package export persists harvested articles to append-only local files.
package export

import "github.com/hydrocare/harvester/internal/article"

// Sink receives each written article record. Implementations append; they
// never rewrite rows emitted by earlier runs.
type Sink interface {
	Write(a article.Article) error
	Close() error
}
