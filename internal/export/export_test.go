package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrocare/harvester/internal/article"
	"github.com/hydrocare/harvester/internal/segment"
)

func sampleArticle(url, hash string, version int) article.Article {
	h := "Matériel"
	return article.Article{
		URL:         url,
		Slug:        article.Slug(url),
		Title:       "Titre",
		Categories:  []string{"DIY"},
		Tags:        []string{"dwc"},
		Intro:       "intro",
		Sections:    []segment.Section{{Heading: &h, Level: segment.LevelH2, Text: "texte", WordCount: 1}},
		WordCount:   3,
		ContentHash: hash,
		Version:     version,
		ScrapedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestJSONLAppendsAcrossOpens(t *testing.T) {
	path := JSONLPath(t.TempDir(), "hydro")

	first, err := NewJSONL(path)
	require.NoError(t, err)
	require.NoError(t, first.Write(sampleArticle("https://example.com/a/", "h1", 1)))
	require.NoError(t, first.Write(sampleArticle("https://example.com/b/", "h2", 1)))
	require.NoError(t, first.Close())

	second, err := NewJSONL(path)
	require.NoError(t, err)
	require.NoError(t, second.Write(sampleArticle("https://example.com/a/", "h3", 2)))
	require.NoError(t, second.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []article.Article
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var a article.Article
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &a))
		lines = append(lines, a)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 3)
	assert.Equal(t, "https://example.com/a/", lines[0].URL)
	assert.Equal(t, 1, lines[0].Version)
	assert.Equal(t, 2, lines[2].Version, "updates append, never rewrite")
}

func TestCSVHeaderWrittenOnce(t *testing.T) {
	path := CSVPath(t.TempDir(), "hydro")

	first, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, first.Write(sampleArticle("https://example.com/a/", "h1", 1)))
	require.NoError(t, first.Close())

	second, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, second.Write(sampleArticle("https://example.com/b/", "h2", 1)))
	require.NoError(t, second.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "https://example.com/a/", rows[1][0])
	assert.Equal(t, "https://example.com/b/", rows[2][0])
}

func TestCSVRowShape(t *testing.T) {
	path := CSVPath(t.TempDir(), "hydro")

	c, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, c.Write(sampleArticle("https://example.com/bac-dwc/", "h1", 2)))
	require.NoError(t, c.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	require.Len(t, row, len(csvHeader))
	assert.Equal(t, "bac-dwc", row[1])
	assert.Equal(t, "DIY", row[5])
	assert.Equal(t, "3", row[7])
	assert.Contains(t, row[8], `"heading":"Matériel"`)
	assert.Equal(t, "2", row[14])
	assert.Equal(t, "2024-05-01T12:00:00Z", row[16])
}

func TestJSONLPathAndCSVPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "hydro_articles.jsonl"), JSONLPath("data", "hydro"))
	assert.Equal(t, filepath.Join("data", "hydro_articles.csv"), CSVPath("data", "hydro"))
}
