package listing

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePage(t *testing.T, page string, html string) []Card {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	u, err := url.Parse(page)
	require.NoError(t, err)
	return Parse(doc, u)
}

func TestParseCardFields(t *testing.T) {
	cards := parsePage(t, "https://example.com/hydroponie/", `
		<article>
			<h2><a href="/hydroponie/nft-debuter/">Débuter en NFT</a></h2>
			<time datetime="2024-03-01">1 mars 2024</time>
			<p class="entry-summary">Un guide complet.</p>
			<a rel="category tag" href="/cat/technique/">Technique</a>
			<img src="/img/nft.jpg" alt="NFT">
		</article>
	`)
	require.Len(t, cards, 1)
	c := cards[0]
	assert.Equal(t, "https://example.com/hydroponie/nft-debuter/", c.URL)
	assert.Equal(t, "Débuter en NFT", c.Title)
	assert.Equal(t, "Un guide complet.", c.Excerpt)
	assert.Equal(t, "Technique", c.Category)
	assert.Equal(t, "2024-03-01", c.Date)
	require.NotNil(t, c.Image)
	assert.Equal(t, "/img/nft.jpg", c.Image.Src)
	assert.Equal(t, "NFT", c.Image.Alt)
}

func TestParseDedupByURL(t *testing.T) {
	cards := parsePage(t, "https://example.com/", `
		<article><h2><a href="/a/">Premier titre</a></h2></article>
		<article><h3><a href="/a/">Titre doublon</a></h3></article>
		<article><h2><a href="/b/">Autre</a></h2></article>
	`)
	require.Len(t, cards, 2)
	assert.Equal(t, "https://example.com/a/", cards[0].URL)
	assert.Equal(t, "Premier titre", cards[0].Title, "first occurrence wins")
	assert.Equal(t, "https://example.com/b/", cards[1].URL)
}

func TestParseLinkFallbacks(t *testing.T) {
	cards := parsePage(t, "https://example.com/", `
		<article><a class="more-link" href="/more/">Lire la suite</a></article>
		<article><a class="read-more" href="/read/">Lire</a></article>
	`)
	require.Len(t, cards, 2)
	assert.Equal(t, "https://example.com/more/", cards[0].URL)
	assert.Equal(t, "https://example.com/read/", cards[1].URL)
}

func TestParseDiscardsUnusableCards(t *testing.T) {
	cards := parsePage(t, "https://example.com/", `
		<article><p>pas de lien</p></article>
		<article><h2><a href="mailto:contact@example.com">Écrire</a></h2></article>
		<article><h2><a href="">Vide</a></h2></article>
		<article><h2><a href="/ok/">Valide</a></h2></article>
	`)
	require.Len(t, cards, 1)
	assert.Equal(t, "https://example.com/ok/", cards[0].URL)
}

func TestParseDatePrefersDatetimeAttr(t *testing.T) {
	withAttr := parsePage(t, "https://example.com/", `
		<article><h2><a href="/a/">A</a></h2><time datetime="2024-01-02">2 janvier</time></article>
	`)
	require.Len(t, withAttr, 1)
	assert.Equal(t, "2024-01-02", withAttr[0].Date)

	textOnly := parsePage(t, "https://example.com/", `
		<article><h2><a href="/a/">A</a></h2><time>2 janvier 2024</time></article>
	`)
	require.Len(t, textOnly, 1)
	assert.Equal(t, "2 janvier 2024", textOnly[0].Date)
}

func TestParseLazyImageFallback(t *testing.T) {
	cards := parsePage(t, "https://example.com/", `
		<article><h2><a href="/a/">A</a></h2><img data-lazy-src="/lazy.jpg" alt=""></article>
	`)
	require.Len(t, cards, 1)
	require.NotNil(t, cards[0].Image)
	assert.Equal(t, "/lazy.jpg", cards[0].Image.Src)
}

func TestParseEmptyListing(t *testing.T) {
	cards := parsePage(t, "https://example.com/", `<main><p>Aucun article.</p></main>`)
	assert.Empty(t, cards)
}
