package models

import (
	"strconv"
	"strings"
	"time"
)

const (
	// Missing stands in for any field that could not be extracted.
	Missing = "N/A"
	// NoReviewsText is the review text of the placeholder row.
	NoReviewsText = "No reviews found"
	// NoImages marks a review whose photo block exists but holds no images.
	NoImages = "No Images"
)

// Columns is the fixed column order of the tabular output.
var Columns = []string{
	"source_url",
	"product_name",
	"price",
	"seller",
	"brand",
	"overall_rating",
	"total_ratings",
	"sold_count",
	"review_username",
	"review_date",
	"review_rating",
	"review_text",
	"review_image_urls",
}

type ProductRecord struct {
	SourceURL     string         `json:"source_url"`
	Name          string         `json:"product_name"`
	Price         string         `json:"price"`
	Seller        string         `json:"seller"`
	Brand         string         `json:"brand"`
	OverallRating string         `json:"overall_rating"`
	TotalRatings  string         `json:"total_ratings"`
	SoldCount     string         `json:"sold_count"`
	Reviews       []ReviewRecord `json:"reviews"`
	ExtractedAt   time.Time      `json:"extracted_at"`
}

type ReviewRecord struct {
	Username string `json:"username"`
	Date     string `json:"date"`
	// Rating is nil when no rating could be read.
	Rating *int   `json:"rating,omitempty"`
	Text   string `json:"text"`
	// ImageURLs is empty with ImagesMissing unset when the review has a photo
	// block without images.
	ImageURLs     []string `json:"image_urls"`
	ImagesMissing bool     `json:"images_missing"`
}

// NewProductRecord returns a record with every scalar field set to Missing.
func NewProductRecord(sourceURL string) *ProductRecord {
	return &ProductRecord{
		SourceURL:     sourceURL,
		Name:          Missing,
		Price:         Missing,
		Seller:        Missing,
		Brand:         Missing,
		OverallRating: Missing,
		TotalRatings:  Missing,
		SoldCount:     Missing,
		Reviews:       make([]ReviewRecord, 0),
		ExtractedAt:   time.Now(),
	}
}

// PlaceholderReview is the single review carried by a product without reviews.
func PlaceholderReview() ReviewRecord {
	return ReviewRecord{
		Username:      Missing,
		Date:          Missing,
		Text:          NoReviewsText,
		ImagesMissing: true,
	}
}

// IsPlaceholder reports whether r is the no-reviews placeholder.
func (r ReviewRecord) IsPlaceholder() bool {
	return r.Username == Missing && r.Date == Missing && r.Rating == nil &&
		r.Text == NoReviewsText && r.ImagesMissing && len(r.ImageURLs) == 0
}

func (r ReviewRecord) RatingField() string {
	if r.Rating == nil {
		return Missing
	}
	return strconv.Itoa(*r.Rating)
}

func (r ReviewRecord) ImageField() string {
	if r.ImagesMissing {
		return Missing
	}
	if len(r.ImageURLs) == 0 {
		return NoImages
	}
	return strings.Join(r.ImageURLs, ", ")
}

// Rows flattens the product into one row per review in Columns order. A
// product without reviews still yields the placeholder row.
func (p *ProductRecord) Rows() [][]string {
	reviews := p.Reviews
	if len(reviews) == 0 {
		reviews = []ReviewRecord{PlaceholderReview()}
	}

	rows := make([][]string, 0, len(reviews))
	for _, review := range reviews {
		rows = append(rows, []string{
			p.SourceURL,
			p.Name,
			p.Price,
			p.Seller,
			p.Brand,
			p.OverallRating,
			p.TotalRatings,
			p.SoldCount,
			review.Username,
			review.Date,
			review.RatingField(),
			review.Text,
			review.ImageField(),
		})
	}
	return rows
}

// MissingFields lists the scalar fields that hold the Missing sentinel.
func (p *ProductRecord) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"product_name", p.Name},
		{"price", p.Price},
		{"seller", p.Seller},
		{"brand", p.Brand},
		{"overall_rating", p.OverallRating},
		{"total_ratings", p.TotalRatings},
		{"sold_count", p.SoldCount},
	}
	for _, f := range fields {
		if f.value == Missing {
			missing = append(missing, f.name)
		}
	}
	return missing
}
