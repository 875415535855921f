package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hydrocare/harvester/internal/article"
)

// JSONL appends one JSON object per line. It is the primary export format;
// every field of the article record survives the round trip.
type JSONL struct {
	f   *os.File
	enc *json.Encoder
}

// JSONLPath returns dir/{name}_articles.jsonl.
func JSONLPath(dir, name string) string {
	return filepath.Join(dir, name+"_articles.jsonl")
}

// NewJSONL opens (creating if needed) the JSONL file at path for appending.
func NewJSONL(path string) (*JSONL, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl %s: %w", path, err)
	}
	return &JSONL{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one record as a single line.
func (j *JSONL) Write(a article.Article) error {
	if err := j.enc.Encode(a); err != nil {
		return fmt.Errorf("append jsonl record for %s: %w", a.URL, err)
	}
	return nil
}

// Close closes the underlying file.
func (j *JSONL) Close() error {
	return j.f.Close()
}
