package scheduler

import (
	"context"
	"fmt"
	"time"

	"hastnet-scraper/models"
	"hastnet-scraper/paging"
	"hastnet-scraper/scraper"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config bounds a run: pages StartPage..EndPage inclusive, BatchSize pages at a time
type Config struct {
	StartPage int
	EndPage   int
	BatchSize int
}

// Validate checks the page range and batch size
func (c Config) Validate() error {
	if c.StartPage < 1 {
		return fmt.Errorf("start page must be >= 1, got %d", c.StartPage)
	}
	if c.StartPage > c.EndPage {
		return fmt.Errorf("start page %d is after end page %d", c.StartPage, c.EndPage)
	}
	if c.EndPage-c.StartPage >= paging.MaxPages {
		return fmt.Errorf("page range %d..%d exceeds %d pages", c.StartPage, c.EndPage, paging.MaxPages)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be >= 1, got %d", c.BatchSize)
	}
	return nil
}

// BatchDone is reported after every completed batch
type BatchDone struct {
	Batch   int // 1-based
	Batches int
	Pages   []int
	Ads     int
	Took    time.Duration
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithObserver registers a callback invoked after each batch completes
func WithObserver(fn func(BatchDone)) Option {
	return func(s *Scheduler) {
		s.observer = fn
	}
}

// Scheduler fetches pages in sequential batches of concurrent requests
type Scheduler struct {
	cfg      Config
	scraper  scraper.Scraper
	logger   *zap.Logger
	observer func(BatchDone)
}

// NewScheduler creates a new scheduler after validating cfg
func NewScheduler(cfg Config, s scraper.Scraper, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("scraper is required")
	}

	sched := &Scheduler{
		cfg:     cfg,
		scraper: s,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(sched)
	}
	if sched.logger == nil {
		sched.logger = zap.NewNop()
	}

	return sched, nil
}

// Run scrapes every page of the configured range. Batch k+1 starts only after
// every page of batch k has returned. Ads are ordered by page index, then by
// position on the page, whatever order the fetches complete in.
// The first page error aborts the run and nothing gathered so far is returned.
func (s *Scheduler) Run(ctx context.Context) (*models.RunResult, error) {
	batches, err := paging.Batches(s.cfg.StartPage, s.cfg.EndPage, s.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	result := &models.RunResult{}

	for i, batch := range batches {
		start := time.Now()

		pages, err := s.runBatch(ctx, batch)
		if err != nil {
			s.logger.Error("Batch failed",
				zap.Int("batch", i+1),
				zap.Ints("pages", batch),
				zap.Error(err),
			)
			return nil, err
		}

		ads := 0
		for _, page := range pages {
			result.Ads = append(result.Ads, page.Ads...)
			result.Rejections = append(result.Rejections, page.Rejections...)
			ads += len(page.Ads)
		}
		result.Pages += len(pages)

		done := BatchDone{
			Batch:   i + 1,
			Batches: len(batches),
			Pages:   batch,
			Ads:     ads,
			Took:    time.Since(start),
		}
		s.logger.Debug("Batch done",
			zap.Int("batch", done.Batch),
			zap.Int("batches", done.Batches),
			zap.Ints("pages", done.Pages),
			zap.Int("ads", done.Ads),
			zap.Duration("took", done.Took),
		)
		if s.observer != nil {
			s.observer(done)
		}
	}

	return result, nil
}

// runBatch scrapes all pages of one batch concurrently and returns their results in page order
func (s *Scheduler) runBatch(ctx context.Context, batch []int) ([]models.PageResult, error) {
	results := make([]models.PageResult, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	for i, page := range batch {
		g.Go(func() error {
			r, err := s.scraper.ScrapePage(gctx, page)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
