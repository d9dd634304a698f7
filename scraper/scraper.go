package scraper

import (
	"context"

	"hastnet-scraper/models"
)

// Scraper interface defines the contract for scraping implementations
type Scraper interface {
	// ScrapePage fetches the listing page with the given 1-based index and
	// returns its accepted ads in document order
	ScrapePage(ctx context.Context, page int) (models.PageResult, error)
}
