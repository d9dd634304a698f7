package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Options configures a CollyFetcher
type Options struct {
	UserAgent string
	// RequestTimeout bounds each request. Zero keeps colly's default.
	RequestTimeout time.Duration
	// Delay is a fixed pause between requests to the same domain
	Delay time.Duration
	// Parallelism caps in-flight requests across all callers.
	// Zero means unlimited unless Delay is set, in which case requests go one at a time.
	Parallelism int
	// MaxBodySize caps the bytes read per response. A body that reaches the cap
	// fails with ErrBodyTooLarge. Zero reads bodies of any size.
	MaxBodySize int
	Logger      *zap.Logger
}

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	collector   *colly.Collector
	maxBodySize int
	logger      *zap.Logger
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(opts Options) (*CollyFetcher, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	collectorOpts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.MaxBodySize(opts.MaxBodySize),
	}
	if opts.UserAgent != "" {
		collectorOpts = append(collectorOpts, colly.UserAgent(opts.UserAgent))
	}
	c := colly.NewCollector(collectorOpts...)

	if opts.RequestTimeout > 0 {
		c.SetRequestTimeout(opts.RequestTimeout)
	}

	if opts.Delay > 0 || opts.Parallelism > 0 {
		if err := c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: opts.Parallelism,
			Delay:       opts.Delay,
		}); err != nil {
			return nil, fmt.Errorf("failed to set rate limit: %w", err)
		}
	}

	return &CollyFetcher{
		collector:   c,
		maxBodySize: opts.MaxBodySize,
		logger:      logger,
	}, nil
}

// Fetch implements the Fetcher interface.
// Each call runs on its own clone so callbacks never leak between concurrent fetches;
// clones share the HTTP backend and therefore the limit rule.
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	c := cf.collector.Clone()
	c.Context = ctx

	var (
		body   []byte
		status int
	)

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})

	c.OnError(func(r *colly.Response, err error) {
		status = r.StatusCode
		cf.logger.Debug("Error fetching page",
			zap.String("url", url),
			zap.Int("status", r.StatusCode),
			zap.Error(err),
		)
	})

	start := time.Now()
	if err := c.Visit(url); err != nil {
		if status != 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
			return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, status)
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if cf.maxBodySize > 0 && len(body) >= cf.maxBodySize {
		return nil, fmt.Errorf("%w: %s reached %d bytes", ErrBodyTooLarge, url, cf.maxBodySize)
	}

	cf.logger.Debug("Fetched page",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)

	return body, nil
}
