package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductRecordDefaultsToMissing(t *testing.T) {
	p := NewProductRecord("https://shop.tiktok.com/view/product/1")

	assert.Equal(t, "https://shop.tiktok.com/view/product/1", p.SourceURL)
	assert.ElementsMatch(t, []string{
		"product_name", "price", "seller", "brand", "overall_rating", "total_ratings", "sold_count",
	}, p.MissingFields())
	assert.Empty(t, p.Reviews)
}

func TestRowsWithoutReviewsYieldsPlaceholder(t *testing.T) {
	p := NewProductRecord("https://shop.tiktok.com/view/product/1")
	p.Name = "Lip Tint"

	rows := p.Rows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(Columns))

	assert.Equal(t, "Lip Tint", rows[0][1])
	assert.Equal(t, []string{Missing, Missing, Missing, NoReviewsText, Missing}, rows[0][8:])
}

func TestRowsOnePerReview(t *testing.T) {
	five := 5
	p := NewProductRecord("u")
	p.Reviews = []ReviewRecord{
		{Username: "anna", Date: "2024-05-01", Rating: &five, Text: "great", ImageURLs: []string{"a.jpg", "b.jpg"}},
		{Username: "minh", Date: "2024-05-02", Rating: &five, Text: "tốt", ImageURLs: []string{}},
		{Username: "sara", Date: "2024-05-03", Text: "جيد", ImagesMissing: true},
	}

	rows := p.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, "5", rows[0][10])
	assert.Equal(t, "a.jpg, b.jpg", rows[0][12])
	assert.Equal(t, "tốt", rows[1][11])
	assert.Equal(t, NoImages, rows[1][12])
	assert.Equal(t, Missing, rows[2][10])
	assert.Equal(t, Missing, rows[2][12])
	assert.Equal(t, "جيد", rows[2][11])
}

func TestPlaceholderReview(t *testing.T) {
	r := PlaceholderReview()
	assert.True(t, r.IsPlaceholder())

	r.Username = "someone"
	assert.False(t, r.IsPlaceholder())
}

func TestScrapeAttemptSucceeded(t *testing.T) {
	var nilAttempt *ScrapeAttempt
	assert.False(t, nilAttempt.Succeeded())
	assert.True(t, (&ScrapeAttempt{Outcome: OutcomeSuccess}).Succeeded())
	assert.False(t, (&ScrapeAttempt{Outcome: OutcomeRegionBlocked}).Succeeded())
}
