// Package state persists per-URL crawl state between runs, backing both
// resume and change detection.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Entry is what a past run recorded about one article URL.
type Entry struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// fileState is the on-disk shape. The articles wrapper leaves room for
// run-level fields without breaking old state files.
type fileState struct {
	Articles map[string]Entry `json:"articles"`
}

// Store holds the in-memory crawl state and its file location. It is not
// safe for concurrent use; the orchestrator owns it from a single goroutine.
type Store struct {
	path     string
	articles map[string]Entry
}

// Path returns the state file location, data/state_{name}.json.
func Path(dir, name string) string {
	return filepath.Join(dir, fmt.Sprintf("state_%s.json", name))
}

// New returns an empty store that will save to path, ignoring any state a
// previous run left there. Used when resuming is disabled.
func New(path string) *Store {
	return &Store{path: path, articles: make(map[string]Entry)}
}

// Load reads the state file at path. A missing file yields an empty store;
// a file that exists but cannot be parsed is an error, so a corrupt state
// never silently re-crawls everything as new.
func Load(path string) (*Store, error) {
	s := &Store{path: path, articles: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}

	var fs fileState
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", path, err)
	}
	if fs.Articles != nil {
		s.articles = fs.Articles
	}
	return s, nil
}

// Get returns the entry for url and whether it exists.
func (s *Store) Get(url string) (Entry, bool) {
	e, ok := s.articles[url]
	return e, ok
}

// Put records or replaces the entry for url in memory. Call Save to persist.
func (s *Store) Put(url string, e Entry) {
	s.articles[url] = e
}

// Len returns the number of known URLs.
func (s *Store) Len() int {
	return len(s.articles)
}

// Save writes the state atomically: a temp file in the same directory is
// renamed over the target, so an interrupt leaves either the old or the new
// state, never a truncated one.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(fileState{Articles: s.articles}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state %s: %w", s.path, err)
	}
	return nil
}
