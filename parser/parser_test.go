package parser

import (
	"strings"
	"testing"

	"hastnet-scraper/filter"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPageURL = "https://www.hastnet.se/till-salu/hastar/?sidan=1"

// tile renders a listing in the hastnet.se markup
func tile(images []string, title, description, breed string) string {
	var b strings.Builder
	b.WriteString(`<a class="Link_link__ce5zB" href="/annons/1">`)
	for _, src := range images {
		b.WriteString(`<img src="` + src + `">`)
	}
	if title != "" {
		b.WriteString(`<h2 class="ListingTile_title___y0N4"> ` + title + ` </h2>`)
	}
	if description != "" {
		b.WriteString(`<span class="ListingTile_description__Gz9R8">` + description + `</span>`)
	}
	if breed != "" {
		b.WriteString(`<span data-testid="listing-tile-attr-breed">` + breed + `</span>`)
	}
	b.WriteString(`<span data-testid="listing-tile-attr-birthYear">2015</span>`)
	b.WriteString(`<span data-testid="listing-tile-attr-height">165 cm</span>`)
	b.WriteString(`<span class="ListingTile_sellerName__kLEin">Anna</span>`)
	b.WriteString(`<span data-testid="listing-location"> Uppsala </span>`)
	b.WriteString(`</a>`)
	return b.String()
}

func page(tiles ...string) []byte {
	return []byte(`<html><body><div class="ListingsList_searchResults__Uf_4T">` +
		strings.Join(tiles, "") + `</div></body></html>`)
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultSchema())
	require.NoError(t, err)
	return p
}

func TestParseHTML_NoListings(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseHTML(testPageURL, []byte(`<html><body><p>Inga annonser</p></body></html>`))
	require.NoError(t, err)

	assert.Empty(t, got.Ads)
	assert.Empty(t, got.Rejections)
}

func TestParseHTML_CompleteListing(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseHTML(testPageURL, page(tile([]string{"https://img/1.jpg", "https://img/2.jpg"}, "Fin valack", "Snäll och trygg", "Svensk halvblod")))
	require.NoError(t, err)
	require.Len(t, got.Ads, 1)
	assert.Empty(t, got.Rejections)

	ad := got.Ads[0]
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, ad.ImageURLs)
	assert.Equal(t, "Fin valack", ad.Title)
	assert.Equal(t, "Snäll och trygg", ad.Description)
	assert.Equal(t, "Svensk halvblod", ad.Race)
	assert.Equal(t, "2015", ad.Age)
	assert.Equal(t, "165 cm", ad.Length)
	assert.Equal(t, "Anna", ad.Seller.Name)
	assert.Equal(t, "Uppsala", ad.Seller.Location)
}

func TestParseHTML_OptionalFieldsMayBeEmpty(t *testing.T) {
	p := newTestParser(t)
	html := `<div class="ListingsList_searchResults__Uf_4T"><a class="Link_link__ce5zB">` +
		`<img src="a.jpg"><h2 class="ListingTile_title___y0N4">Ponny</h2>` +
		`<span class="ListingTile_description__Gz9R8">Till salu</span></a></div>`

	got, err := p.ParseHTML(testPageURL, []byte(html))
	require.NoError(t, err)
	require.Len(t, got.Ads, 1)

	ad := got.Ads[0]
	assert.Empty(t, ad.Race)
	assert.Empty(t, ad.Age)
	assert.Empty(t, ad.Length)
	assert.Empty(t, ad.Seller.Name)
	assert.Empty(t, ad.Seller.Location)
}

func TestParseHTML_RejectsIncompleteListings(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseHTML(testPageURL, page(
		tile(nil, "Utan bild", "Beskrivning", ""),
		tile([]string{"a.jpg"}, "Komplett", "Beskrivning", ""),
		tile([]string{"b.jpg"}, "", "Beskrivning", ""),
		tile([]string{"c.jpg"}, "Utan beskrivning", "", ""),
	))
	require.NoError(t, err)

	require.Len(t, got.Ads, 1)
	assert.Equal(t, "Komplett", got.Ads[0].Title)

	require.Len(t, got.Rejections, 3)
	assert.Equal(t, []string{filter.FieldImages}, got.Rejections[0].Missing)
	assert.Equal(t, 0, got.Rejections[0].Index)
	assert.Equal(t, []string{filter.FieldTitle}, got.Rejections[1].Missing)
	assert.Equal(t, 2, got.Rejections[1].Index)
	assert.Equal(t, []string{filter.FieldDescription}, got.Rejections[2].Missing)
	assert.Equal(t, "Utan beskrivning", got.Rejections[2].Ad.Title)

	for _, r := range got.Rejections {
		assert.Equal(t, testPageURL, r.PageURL)
		assert.Contains(t, r.Element, "Link_link__ce5zB")
	}
}

func TestParseHTML_ImageWithoutSourceIsSkipped(t *testing.T) {
	p := newTestParser(t)
	html := `<div class="ListingsList_searchResults__Uf_4T"><a class="Link_link__ce5zB">` +
		`<img alt="placeholder"><img src="real.jpg">` +
		`<h2 class="ListingTile_title___y0N4">Häst</h2>` +
		`<span class="ListingTile_description__Gz9R8">Text</span></a></div>`

	got, err := p.ParseHTML(testPageURL, []byte(html))
	require.NoError(t, err)
	require.Len(t, got.Ads, 1)
	assert.Equal(t, []string{"real.jpg"}, got.Ads[0].ImageURLs)
}

func TestParseHTML_OnlyImagelessImagesIsRejected(t *testing.T) {
	p := newTestParser(t)

	got, err := p.ParseHTML(testPageURL, page(tile([]string{""}, "Titel", "Text", "")))
	require.NoError(t, err)

	assert.Empty(t, got.Ads)
	require.Len(t, got.Rejections, 1)
	assert.Equal(t, []string{filter.FieldImages}, got.Rejections[0].Missing)
}

func TestExtract_CustomSchema(t *testing.T) {
	schema := Schema{
		Listing:        "li.ad",
		Image:          "img",
		ImageAttr:      "data-src",
		Title:          ".t",
		Description:    ".d",
		Race:           ".r",
		Age:            ".a",
		Length:         ".l",
		SellerName:     ".sn",
		SellerLocation: ".sl",
	}
	p, err := NewParser(schema)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<ul>
		<li class="ad"><img data-src="x1"><span class="t">One</span><span class="d">First</span></li>
		<li class="ad"><img data-src="x2"><span class="t">Two</span><span class="d">Second</span><span class="sl">Lund</span></li>
	</ul>`))
	require.NoError(t, err)

	got := p.Extract("synthetic", doc)

	require.Len(t, got.Ads, 2)
	assert.Equal(t, "One", got.Ads[0].Title)
	assert.Equal(t, []string{"x2"}, got.Ads[1].ImageURLs)
	assert.Equal(t, "Lund", got.Ads[1].Seller.Location)
}

func TestNewParser_InvalidSchema(t *testing.T) {
	schema := DefaultSchema()
	schema.Title = "h2[["
	_, err := NewParser(schema)
	assert.Error(t, err)

	schema = DefaultSchema()
	schema.Listing = ""
	_, err = NewParser(schema)
	assert.ErrorContains(t, err, "listing")

	schema = DefaultSchema()
	schema.ImageAttr = ""
	assert.Error(t, schema.Validate())

	assert.NoError(t, DefaultSchema().Validate())
}
