package sheets

import (
	"context"
	"strings"

	"hastnet-scraper/models"
)

// DefaultImageDelimiter separates image URLs within the Image URLs cell
const DefaultImageDelimiter = ", "

// Header is the fixed column order of every export
var Header = []string{
	"Title",
	"Description",
	"Race",
	"Age",
	"Length",
	"Seller Name",
	"Seller Location",
	"Image URLs",
}

// Exporter writes a run result to its destination
type Exporter interface {
	Export(ctx context.Context, result *models.RunResult) error
}

// Row maps one ad to its cells in Header order
func Row(ad models.Ad, delimiter string) []interface{} {
	return []interface{}{
		ad.Title,
		ad.Description,
		ad.Race,
		ad.Age,
		ad.Length,
		ad.Seller.Name,
		ad.Seller.Location,
		strings.Join(ad.ImageURLs, delimiter),
	}
}

// Rows returns the header row followed by one row per ad
func Rows(ads []models.Ad, delimiter string) [][]interface{} {
	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}

	values := make([][]interface{}, 0, len(ads)+1)
	values = append(values, header)
	for _, ad := range ads {
		values = append(values, Row(ad, delimiter))
	}
	return values
}
