package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shop-scraper/internal/models"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func familySize(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return len(f.GetMetric())
		}
	}
	return 0
}

func TestObserveAttempt(t *testing.T) {
	m := New()

	m.ObserveAttempt("VN", models.OutcomeRegionBlocked, 2*time.Second)
	m.ObserveAttempt("SA", models.OutcomeSuccess, 4*time.Second)
	m.ObserveAttempt("SA", models.OutcomeSuccess, time.Second)
	m.ObserveAttempt("", models.OutcomeException, 0)

	assert.Equal(t, float64(1), counterValue(t, m.AttemptsTotal.WithLabelValues("VN", "region_blocked")))
	assert.Equal(t, float64(2), counterValue(t, m.AttemptsTotal.WithLabelValues("SA", "success")))
	assert.Equal(t, float64(1), counterValue(t, m.AttemptsTotal.WithLabelValues("unknown", "exception")))
	assert.Equal(t, 3, familySize(t, m.Registry, "shop_scraper_attempt_duration_seconds"))
}

func TestCounters(t *testing.T) {
	m := New()

	m.IncURL("scraped")
	m.IncURL("failed")
	m.IncURL("scraped")
	m.AddCandidates(5)
	m.AddCandidates(-1)
	m.IncProducts()
	m.IncExtractErrors()

	assert.Equal(t, float64(2), counterValue(t, m.URLsTotal.WithLabelValues("scraped")))
	assert.Equal(t, float64(5), counterValue(t, m.CandidatesTotal))
	assert.Equal(t, float64(1), counterValue(t, m.ProductsTotal))
	assert.Equal(t, float64(1), counterValue(t, m.ExtractErrorsTotal))
	assert.Equal(t, 2, familySize(t, m.Registry, "shop_scraper_urls_total"))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAttempt("VN", models.OutcomeSuccess, time.Second)
		m.IncURL("scraped")
		m.AddCandidates(1)
		m.IncProducts()
		m.IncExtractErrors()
	})
}
