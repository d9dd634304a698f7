package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hastnet-scraper/config"
	"hastnet-scraper/db"
	"hastnet-scraper/fetcher"
	"hastnet-scraper/metrics"
	"hastnet-scraper/models"
	"hastnet-scraper/parser"
	"hastnet-scraper/scheduler"
	"hastnet-scraper/scraper"
	"hastnet-scraper/sheets"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/api/option"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Err", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Err", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Scrape failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Err", err)
		stop()
		logger.Sync()
		os.Exit(1)
	}

	fmt.Println("Saved")
}

// newLogger builds a console logger for the given level
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "console"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zapCfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.Sampling = nil

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return logger, nil
}

// run scrapes the configured page range and exports it. Any page failure
// aborts the run before anything is written.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	m := metrics.New()
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Warn("Failed to write metrics", zap.Error(err))
			}
		}()
	}

	p, err := parser.NewParser(cfg.Site.Schema)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	f, err := fetcher.NewCollyFetcher(fetcher.Options{
		UserAgent:      cfg.Scrape.UserAgent,
		RequestTimeout: cfg.Scrape.RequestTimeout,
		Delay:          cfg.Scrape.Delay,
		Parallelism:    cfg.Scrape.BatchSize,
		MaxBodySize:    cfg.Scrape.MaxBodySize,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	exporters, err := newExporters(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var archive *db.DB
	if cfg.Database.URL != "" {
		archive, err = db.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer archive.Close()
	}

	sched, err := scheduler.NewScheduler(
		scheduler.Config{
			StartPage: cfg.Scrape.StartPage,
			EndPage:   cfg.Scrape.EndPage,
			BatchSize: cfg.Scrape.BatchSize,
		},
		scraper.NewPageScraper(f, p, cfg.Site.URLTemplate, logger, m),
		scheduler.WithLogger(logger),
		scheduler.WithObserver(func(d scheduler.BatchDone) {
			logger.Info("Batch done",
				zap.Int("batch", d.Batch),
				zap.Int("batches", d.Batches),
				zap.Int("ads", d.Ads),
			)
		}),
	)
	if err != nil {
		return err
	}

	runInfo := db.Run{
		StartPage:  cfg.Scrape.StartPage,
		EndPage:    cfg.Scrape.EndPage,
		BatchSize:  cfg.Scrape.BatchSize,
		OutputPath: cfg.Output.Path,
		StartedAt:  time.Now(),
	}

	result, err := sched.Run(ctx)
	if err != nil {
		if archive != nil {
			if _, archErr := archive.RecordFailure(context.WithoutCancel(ctx), runInfo, err); archErr != nil {
				logger.Warn("Failed to record failed run", zap.Error(archErr))
			}
		}
		return err
	}

	for _, exp := range exporters {
		if err := exp.Export(ctx, result); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	}

	if archive != nil {
		if err := archiveRun(ctx, archive, runInfo, result, logger); err != nil {
			return err
		}
	}

	logger.Info("Scrape finished",
		zap.Int("pages", result.Pages),
		zap.Int("ads", len(result.Ads)),
		zap.Int("rejected", len(result.Rejections)),
		zap.String("output", cfg.Output.Path),
	)
	return nil
}

// archiveRun stores the run with its ads and reads it back to confirm the stored status
func archiveRun(ctx context.Context, archive *db.DB, info db.Run, result *models.RunResult, logger *zap.Logger) error {
	runID, err := archive.SaveRun(ctx, info, result)
	if err != nil {
		return err
	}

	stored, err := archive.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	logger.Info("Archived run",
		zap.Int("run_id", stored.ID),
		zap.String("status", stored.Status),
	)
	return nil
}

// newExporters returns the xlsx exporter, followed by the Google Sheets one when a spreadsheet is configured
func newExporters(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]sheets.Exporter, error) {
	exporters := []sheets.Exporter{
		sheets.NewExcelWriter(cfg.Output.Path, cfg.Output.SheetName, cfg.Output.ImageDelimiter, logger),
	}

	if cfg.Google.SpreadsheetURL == "" {
		return exporters, nil
	}

	spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Google.SpreadsheetURL)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("could not extract spreadsheet ID from URL: %s", cfg.Google.SpreadsheetURL)
	}

	creds, err := sheets.LoadCredentials(cfg.Google.CredentialsPath)
	if err != nil {
		return nil, err
	}

	gw, err := sheets.NewGoogleWriter(ctx, spreadsheetID, cfg.Output.SheetName, cfg.Output.ImageDelimiter, logger,
		option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, err
	}

	return append(exporters, gw), nil
}
