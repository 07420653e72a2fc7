package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shop-scraper/internal/metrics"
	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/scraper"
	"github.com/maltedev/shop-scraper/internal/workflow"
)

func newTestRouter(t *testing.T, agg *workflow.Aggregator, m *metrics.Metrics) http.Handler {
	t.Helper()
	h := NewHandlers(agg, slog.Default())
	if m == nil {
		return NewRouter(h, nil)
	}
	return NewRouter(h, m.Registry)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seededAggregator() *workflow.Aggregator {
	agg := workflow.NewAggregator()
	agg.Start("run-1", "lip tint")
	agg.SetCandidates([]models.CandidateURL{
		{URL: "https://shop.tiktok.com/view/product/1"},
		{URL: "https://shop.tiktok.com/view/product/2"},
	})
	agg.SetState(workflow.StateScraping)

	ok := &models.ScrapeAttempt{URL: "https://shop.tiktok.com/view/product/1", Region: "VN", Outcome: models.OutcomeSuccess}
	agg.Record(&scraper.URLResult{
		Candidate: models.CandidateURL{URL: ok.URL},
		Attempts:  []*models.ScrapeAttempt{ok},
		Success:   ok,
	})
	blocked := &models.ScrapeAttempt{URL: "https://shop.tiktok.com/view/product/2", Region: "US", Outcome: models.OutcomeRegionBlocked}
	agg.Record(&scraper.URLResult{
		Candidate: models.CandidateURL{URL: blocked.URL},
		Attempts:  []*models.ScrapeAttempt{blocked},
	})
	return agg
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t, workflow.NewAggregator(), nil), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, string(workflow.StateIdle), body.State)
}

func TestStatusBeforeRun(t *testing.T) {
	rec := get(t, newTestRouter(t, workflow.NewAggregator(), nil), "/api/v1/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no run started")
}

func TestStatusDuringRun(t *testing.T) {
	rec := get(t, newTestRouter(t, seededAggregator(), nil), "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body workflow.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, workflow.StateScraping, body.State)
	assert.Equal(t, 2, body.TotalDiscovered)
	assert.Equal(t, 2, body.Processed)
	assert.Equal(t, 1, body.SuccessfullyScraped)
	require.Len(t, body.URLs, 2)
	assert.Equal(t, "US", body.URLs[1].Region)
}

func TestListURLsFilter(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"All", "/api/v1/status/urls", 2},
		{"Success", "/api/v1/status/urls?outcome=success", 1},
		{"Blocked", "/api/v1/status/urls?outcome=region_blocked", 1},
		{"None", "/api/v1/status/urls?outcome=user_quit", 0},
	}

	router := newTestRouter(t, seededAggregator(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)

			var urls []workflow.URLStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &urls))
			assert.Len(t, urls, tt.expected)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ObserveAttempt("VN", models.OutcomeSuccess, 0)

	rec := get(t, newTestRouter(t, workflow.NewAggregator(), m), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shop_scraper_attempts_total{outcome="success",region="VN"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	rec := get(t, newTestRouter(t, workflow.NewAggregator(), nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
