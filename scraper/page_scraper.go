package scraper

import (
	"context"
	"fmt"
	"time"

	"hastnet-scraper/fetcher"
	"hastnet-scraper/metrics"
	"hastnet-scraper/models"
	"hastnet-scraper/paging"
	"hastnet-scraper/parser"

	"go.uber.org/zap"
)

// PageScraper implements the Scraper interface on top of a Fetcher and a Parser
type PageScraper struct {
	fetcher     fetcher.Fetcher
	parser      *parser.Parser
	urlTemplate string
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewPageScraper creates a PageScraper. logger and m may be nil.
func NewPageScraper(f fetcher.Fetcher, p *parser.Parser, urlTemplate string, logger *zap.Logger, m *metrics.Metrics) *PageScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageScraper{
		fetcher:     f,
		parser:      p,
		urlTemplate: urlTemplate,
		logger:      logger,
		metrics:     m,
	}
}

// ScrapePage implements the Scraper interface.
// Fetch and parse failures are returned; incomplete listings are only logged.
func (ps *PageScraper) ScrapePage(ctx context.Context, page int) (models.PageResult, error) {
	url, err := paging.PageURL(ps.urlTemplate, page)
	if err != nil {
		return models.PageResult{}, fmt.Errorf("scrape page %d: %w", page, err)
	}

	start := time.Now()
	body, err := ps.fetcher.Fetch(ctx, url)
	if err != nil {
		ps.metrics.ObserveFailure()
		return models.PageResult{}, fmt.Errorf("scrape page %d: %w", page, err)
	}

	extraction, err := ps.parser.ParseHTML(url, body)
	if err != nil {
		ps.metrics.ObserveFailure()
		return models.PageResult{}, fmt.Errorf("scrape page %d: %w", page, err)
	}

	for _, r := range extraction.Rejections {
		ps.logger.Warn("Missing data",
			zap.String("url", r.PageURL),
			zap.Int("index", r.Index),
			zap.Strings("missing", r.Missing),
			zap.String("title", r.Ad.Title),
			zap.Int("images", len(r.Ad.ImageURLs)),
		)
		ps.logger.Debug("Rejected listing element",
			zap.String("url", r.PageURL),
			zap.Int("index", r.Index),
			zap.String("element", r.Element),
		)
	}

	ps.metrics.ObservePage(len(extraction.Ads), len(extraction.Rejections), time.Since(start))
	ps.logger.Info("Saved page",
		zap.Int("page", page),
		zap.Int("ads", len(extraction.Ads)),
	)

	return models.PageResult{
		Page:       page,
		URL:        url,
		Ads:        extraction.Ads,
		Rejections: extraction.Rejections,
	}, nil
}
