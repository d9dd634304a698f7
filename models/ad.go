package models

// Ad represents one horse listing scraped from a search result page
type Ad struct {
	ImageURLs   []string
	Title       string
	Description string
	Race        string
	Age         string
	Length      string
	Seller      Seller
}

// Seller holds the seller details shown on a listing tile
type Seller struct {
	Name     string
	Location string
}

// Rejection describes a listing that was dropped during extraction
type Rejection struct {
	PageURL string
	Index   int      // Position of the listing element on the page (0-based)
	Missing []string // Required fields that were empty
	Ad      Ad       // The partial record as extracted
	Element string   // Outer HTML of the listing element, for diagnostics
}

// PageResult holds the accepted ads of a single page
type PageResult struct {
	Page       int
	URL        string
	Ads        []Ad
	Rejections []Rejection
}

// RunResult is the ordered outcome of a complete scrape run
type RunResult struct {
	Ads        []Ad
	Rejections []Rejection
	Pages      int
}
