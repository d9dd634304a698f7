package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hastnet-scraper/paging"
	"hastnet-scraper/parser"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PagePlaceholder is replaced by the page index in the site URL template
const PagePlaceholder = paging.Placeholder

// ErrInvalidConfig is returned by Validate for out-of-range or missing values
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the scraper configuration
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Output   OutputConfig   `yaml:"output"`
	Google   GoogleConfig   `yaml:"google"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// SiteConfig describes where the listing pages live and how to read them
type SiteConfig struct {
	URLTemplate string        `yaml:"url_template"`
	Schema      parser.Schema `yaml:"schema"`
}

// ScrapeConfig controls the page range and how many pages are fetched at once
type ScrapeConfig struct {
	StartPage      int           `yaml:"start_page"`
	EndPage        int           `yaml:"end_page"`
	BatchSize      int           `yaml:"batch_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	Delay          time.Duration `yaml:"delay"`
	UserAgent      string        `yaml:"user_agent"`
	// MaxBodySize caps a page body in bytes; 0 means no cap
	MaxBodySize    int           `yaml:"max_body_size"`
}

// OutputConfig describes the exported workbook
type OutputConfig struct {
	Path           string `yaml:"path"`
	SheetName      string `yaml:"sheet_name"`
	ImageDelimiter string `yaml:"image_delimiter"`
}

// GoogleConfig enables mirroring the export into a Google spreadsheet
type GoogleConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
}

// DatabaseConfig enables archiving runs in Postgres
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// MetricsConfig enables writing run metrics in the Prometheus text format
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LogConfig sets the log level (debug, info, warn, error)
type LogConfig struct {
	Level string `yaml:"level"`
}

// GetDefaultConfig returns the configuration for scraping hastnet.se
func GetDefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			URLTemplate: "https://www.hastnet.se/till-salu/hastar/?sidan=" + PagePlaceholder,
			Schema:      parser.DefaultSchema(),
		},
		Scrape: ScrapeConfig{
			StartPage:      1,
			EndPage:        10,
			BatchSize:      5,
			RequestTimeout: 30 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Output: OutputConfig{
			Path:           "output/ads.xlsx",
			SheetName:      "Hästnet-ads",
			ImageDelimiter: ", ",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies .env and
// environment overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from HASTNET_* variables and DATABASE_URL
func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"HASTNET_URL_TEMPLATE":       &c.Site.URLTemplate,
		"HASTNET_USER_AGENT":         &c.Scrape.UserAgent,
		"HASTNET_OUTPUT":             &c.Output.Path,
		"HASTNET_SHEET_NAME":         &c.Output.SheetName,
		"HASTNET_SPREADSHEET_URL":    &c.Google.SpreadsheetURL,
		"HASTNET_GOOGLE_CREDENTIALS": &c.Google.CredentialsPath,
		"DATABASE_URL":               &c.Database.URL,
		"HASTNET_METRICS_TEXTFILE":   &c.Metrics.Textfile,
		"HASTNET_LOG_LEVEL":          &c.Log.Level,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"HASTNET_START_PAGE":    &c.Scrape.StartPage,
		"HASTNET_END_PAGE":      &c.Scrape.EndPage,
		"HASTNET_BATCH_SIZE":    &c.Scrape.BatchSize,
		"HASTNET_MAX_BODY_SIZE": &c.Scrape.MaxBodySize,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = n
	}

	durations := map[string]*time.Duration{
		"HASTNET_REQUEST_TIMEOUT": &c.Scrape.RequestTimeout,
		"HASTNET_DELAY":           &c.Scrape.Delay,
	}
	for key, dst := range durations {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = d
	}

	return nil
}

// Validate checks page bounds, batch size, output settings and the page schema
func (c *Config) Validate() error {
	if c.Scrape.StartPage < 1 {
		return fmt.Errorf("%w: start_page must be >= 1, got %d", ErrInvalidConfig, c.Scrape.StartPage)
	}
	if c.Scrape.StartPage > c.Scrape.EndPage {
		return fmt.Errorf("%w: start_page %d is after end_page %d", ErrInvalidConfig, c.Scrape.StartPage, c.Scrape.EndPage)
	}
	if c.Scrape.EndPage-c.Scrape.StartPage >= paging.MaxPages {
		return fmt.Errorf("%w: page range %d..%d exceeds %d pages", ErrInvalidConfig, c.Scrape.StartPage, c.Scrape.EndPage, paging.MaxPages)
	}
	if c.Scrape.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be >= 1, got %d", ErrInvalidConfig, c.Scrape.BatchSize)
	}
	if c.Scrape.RequestTimeout < 0 || c.Scrape.Delay < 0 {
		return fmt.Errorf("%w: request_timeout and delay must not be negative", ErrInvalidConfig)
	}
	if c.Scrape.MaxBodySize < 0 {
		return fmt.Errorf("%w: max_body_size must not be negative", ErrInvalidConfig)
	}
	if !strings.Contains(c.Site.URLTemplate, PagePlaceholder) {
		return fmt.Errorf("%w: url_template must contain %s", ErrInvalidConfig, PagePlaceholder)
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Output.SheetName) == "" {
		return fmt.Errorf("%w: sheet_name is required", ErrInvalidConfig)
	}
	if err := c.Site.Schema.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
