package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maltedev/shop-scraper/internal/models"
)

// Metrics bundles Prometheus collectors for a scrape run.
type Metrics struct {
	Registry           *prometheus.Registry
	AttemptsTotal      *prometheus.CounterVec
	AttemptDuration    *prometheus.HistogramVec
	URLsTotal          *prometheus.CounterVec
	CandidatesTotal    prometheus.Counter
	ProductsTotal      prometheus.Counter
	ExtractErrorsTotal prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_scraper_attempts_total",
			Help: "Scrape attempts by region and terminal outcome.",
		},
		[]string{"region", "outcome"},
	)
	attemptDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_scraper_attempt_duration_seconds",
			Help:    "Wall time of one scrape attempt, operator waits included.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"region"},
	)
	urls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_scraper_urls_total",
			Help: "Candidate URLs by final result.",
		},
		[]string{"result"},
	)
	candidates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_scraper_candidates_discovered_total",
			Help: "Unique shop URLs returned by discovery.",
		},
	)
	products := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_scraper_products_extracted_total",
			Help: "Product records extracted from snapshots.",
		},
	)
	extractErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shop_scraper_extract_errors_total",
			Help: "Snapshots that could not be turned into a product record.",
		},
	)

	registry.MustRegister(attempts, attemptDuration, urls, candidates, products, extractErrors)

	return &Metrics{
		Registry:           registry,
		AttemptsTotal:      attempts,
		AttemptDuration:    attemptDuration,
		URLsTotal:          urls,
		CandidatesTotal:    candidates,
		ProductsTotal:      products,
		ExtractErrorsTotal: extractErrors,
	}
}

// ObserveAttempt records one finished attempt.
func (m *Metrics) ObserveAttempt(region string, outcome models.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	if region == "" {
		region = "unknown"
	}
	m.AttemptsTotal.WithLabelValues(region, string(outcome)).Inc()
	m.AttemptDuration.WithLabelValues(region).Observe(elapsed.Seconds())
}

// IncURL counts a finished candidate under result.
func (m *Metrics) IncURL(result string) {
	if m == nil {
		return
	}
	m.URLsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) AddCandidates(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CandidatesTotal.Add(float64(n))
}

func (m *Metrics) IncProducts() {
	if m == nil {
		return
	}
	m.ProductsTotal.Inc()
}

func (m *Metrics) IncExtractErrors() {
	if m == nil {
		return
	}
	m.ExtractErrorsTotal.Inc()
}
