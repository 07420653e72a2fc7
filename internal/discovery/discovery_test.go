package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/shopurl"
)

const searchURL = "https://firecrawl.test/v1/search"

func newMockedClient(t *testing.T) (*FirecrawlClient, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := NewFirecrawlClient("fc-key",
		WithBaseURL("https://firecrawl.test/"),
		WithHTTPClient(&http.Client{Transport: transport}),
	)
	return client, transport
}

func TestFirecrawlSearch(t *testing.T) {
	client, transport := newMockedClient(t)

	transport.RegisterResponder(http.MethodPost, searchURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer fc-key", req.Header.Get("Authorization"))

		var body searchRequest
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, searchRequest{Query: "lip tint", Limit: 5, Country: "vn"}, body)

		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"success": true,
			"data": []map[string]string{
				{"url": "https://shop.tiktok.com/view/product/1", "title": "Lip Tint", "description": "Rose"},
			},
		})
	})

	results, err := client.Search(context.Background(), "lip tint", 5, "vn")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Lip Tint", results[0].Title)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFirecrawlSearchErrors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"Server error", httpmock.NewStringResponder(http.StatusInternalServerError, "boom")},
		{"Rate limited", httpmock.NewStringResponder(http.StatusTooManyRequests, `{"error":"rate limit"}`)},
		{"Bad JSON", httpmock.NewStringResponder(http.StatusOK, "{not json")},
		{"Unsuccessful", httpmock.NewStringResponder(http.StatusOK, `{"success":false,"error":"quota"}`)},
		{"Transport", httpmock.NewErrorResponder(errors.New("connection refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, transport := newMockedClient(t)
			transport.RegisterResponder(http.MethodPost, searchURL, tt.responder)

			_, err := client.Search(context.Background(), "q", 5, "")
			assert.ErrorIs(t, err, ErrDiscovery)
		})
	}
}

type stubSearcher struct {
	results []SearchResult
	err     error
}

func (s stubSearcher) Search(ctx context.Context, query string, limit int, country string) ([]SearchResult, error) {
	return s.results, s.err
}

func TestDiscoverFiltersDedupesAndTruncates(t *testing.T) {
	svc := NewService(stubSearcher{results: []SearchResult{
		{URL: "https://www.amazon.com/dp/B0001", Title: "not a shop"},
		{URL: "https://shop.tiktok.com/view/product/1", Title: "first"},
		{URL: "https://seller.tiktok.com/university", Title: "seller"},
		{URL: "https://shop.tiktok.com/view/product/1", Title: "duplicate"},
		{URL: "https://shop-vn.tiktok.com/view/product/2", Title: "regional"},
		{URL: "https://www.tiktok.com/shop/pdp/3", Title: "over limit"},
	}}, shopurl.NewClassifier(shopurl.DefaultRules()))

	candidates := svc.Discover(context.Background(), "lip tint", 3, "vn")

	require.Len(t, candidates, 3)
	assert.Equal(t, "first", candidates[0].Title)
	assert.Equal(t, models.URLTypeMainShop, candidates[0].Type)
	assert.Equal(t, "lip tint", candidates[0].Query)
	assert.Equal(t, models.URLTypeSellerPortal, candidates[1].Type)
	assert.Equal(t, "https://shop-vn.tiktok.com/view/product/2", candidates[2].URL)
}

func TestDiscoverSearchFailureYieldsEmpty(t *testing.T) {
	svc := NewService(stubSearcher{err: ErrDiscovery}, shopurl.NewClassifier(shopurl.DefaultRules()))

	candidates := svc.Discover(context.Background(), "q", 10, "")
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}
