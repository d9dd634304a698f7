package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of a scrape run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	PagesFetched  prometheus.Counter
	FetchFailures prometheus.Counter
	AdsAccepted   prometheus.Counter
	AdsRejected   prometheus.Counter
	FetchDuration prometheus.Histogram
}

// New creates the metrics on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "hastnet_pages_fetched_total",
			Help: "The total number of listing pages fetched and parsed",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "hastnet_page_fetch_failures_total",
			Help: "The total number of listing pages that could not be fetched or parsed",
		}),
		AdsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "hastnet_ads_accepted_total",
			Help: "The total number of ads kept for export",
		}),
		AdsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "hastnet_ads_rejected_total",
			Help: "The total number of ads dropped for missing images, title or description",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hastnet_page_fetch_seconds",
			Help:    "Time spent fetching and parsing one listing page",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObservePage records a successfully scraped page
func (m *Metrics) ObservePage(accepted, rejected int, took time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.AdsAccepted.Add(float64(accepted))
	m.AdsRejected.Add(float64(rejected))
	m.FetchDuration.Observe(took.Seconds())
}

// ObserveFailure records a page that failed to fetch or parse
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.FetchFailures.Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for pickup by the node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
