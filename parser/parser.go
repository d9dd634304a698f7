package parser

import (
	"bytes"
	"fmt"
	"strings"

	"hastnet-scraper/filter"
	"hastnet-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// Extraction is the outcome of parsing one page
type Extraction struct {
	Ads        []models.Ad
	Rejections []models.Rejection
}

// Parser extracts ads from search result HTML
type Parser struct {
	sel *compiled
}

// NewParser creates a Parser for the given schema
func NewParser(schema Schema) (*Parser, error) {
	sel, err := schema.compile()
	if err != nil {
		return nil, err
	}
	return &Parser{sel: sel}, nil
}

// ParseHTML parses the page body and extracts its ads
func (p *Parser) ParseHTML(pageURL string, body []byte) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.Extract(pageURL, doc), nil
}

// Extract returns one candidate per listing element in document order.
// Candidates without images, title or description end up in Rejections.
func (p *Parser) Extract(pageURL string, doc *goquery.Document) Extraction {
	var out Extraction

	doc.FindMatcher(p.sel.listing).Each(func(i int, s *goquery.Selection) {
		ad := p.extractAd(s)

		if missing := filter.Missing(ad); len(missing) > 0 {
			element, _ := goquery.OuterHtml(s)
			out.Rejections = append(out.Rejections, models.Rejection{
				PageURL: pageURL,
				Index:   i,
				Missing: missing,
				Ad:      ad,
				Element: element,
			})
			return
		}

		out.Ads = append(out.Ads, ad)
	})

	return out
}

// extractAd reads a single listing tile; absent parts become empty values
func (p *Parser) extractAd(s *goquery.Selection) models.Ad {
	var imageURLs []string
	s.FindMatcher(p.sel.image).Each(func(_ int, img *goquery.Selection) {
		if src := strings.TrimSpace(img.AttrOr(p.sel.imageAttr, "")); src != "" {
			imageURLs = append(imageURLs, src)
		}
	})

	text := func(m goquery.Matcher) string {
		return strings.TrimSpace(s.FindMatcher(m).Text())
	}

	return models.Ad{
		ImageURLs:   imageURLs,
		Title:       text(p.sel.title),
		Description: text(p.sel.description),
		Race:        text(p.sel.race),
		Age:         text(p.sel.age),
		Length:      text(p.sel.length),
		Seller: models.Seller{
			Name:     text(p.sel.sellerName),
			Location: text(p.sel.sellerLocation),
		},
	}
}
