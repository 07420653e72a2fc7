package parser

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maltedev/shop-scraper/internal/models"
)

// digitRun matches any decimal digits, Arabic-Indic included.
var digitRun = regexp.MustCompile(`\p{Nd}+`)

type Extractor struct {
	sel      Selectors
	keywords Keywords
	brands   map[string]struct{}
	logger   *slog.Logger
	now      func() time.Time
}

func NewExtractor(sel Selectors, keywords Keywords) *Extractor {
	brands := make(map[string]struct{}, len(keywords.BrandLabels))
	for _, label := range keywords.BrandLabels {
		brands[strings.TrimSpace(label)] = struct{}{}
	}
	return &Extractor{
		sel:      sel,
		keywords: keywords,
		brands:   brands,
		logger:   slog.Default().With("component", "extractor"),
		now:      time.Now,
	}
}

// Extract parses one snapshot. Fields that cannot be found hold
// models.Missing; only unparseable markup is an error.
func (e *Extractor) Extract(html string, sourceURL string) (*models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	product := models.NewProductRecord(sourceURL)
	product.ExtractedAt = e.now()

	if v, ok := e.text(doc.Selection, e.sel.Name); ok {
		product.Name = v
	}
	if v, ok := e.text(doc.Selection, e.sel.Price); ok {
		product.Price = v
	}
	if v, ok := e.seller(doc); ok {
		product.Seller = v
	}
	if v, ok := e.brand(doc); ok {
		product.Brand = v
	}
	if v, ok := e.text(doc.Selection, e.sel.Rating); ok {
		product.OverallRating = v
	}
	if v, ok := e.digits(doc.Selection, e.sel.RatingCount); ok {
		product.TotalRatings = v
	}
	if v, ok := e.digits(doc.Selection, e.sel.Sold); ok {
		product.SoldCount = v
	}

	product.Reviews = e.reviews(doc)

	e.logger.Debug("product extracted",
		"url", sourceURL,
		"name", product.Name,
		"reviews", len(product.Reviews),
		"missing", product.MissingFields(),
	)

	return product, nil
}

// text returns the whitespace-normalized text of the first match.
func (e *Extractor) text(s *goquery.Selection, selector string) (string, bool) {
	if selector == "" {
		return "", false
	}
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return clean(found.Text()), true
}

// digits returns the first run of digits in the matched text.
func (e *Extractor) digits(s *goquery.Selection, selector string) (string, bool) {
	v, ok := e.text(s, selector)
	if !ok {
		return "", false
	}
	run := digitRun.FindString(v)
	return run, run != ""
}

func (e *Extractor) seller(doc *goquery.Document) (string, bool) {
	raw, ok := e.text(doc.Selection, e.sel.Seller)
	if !ok {
		return "", false
	}
	for _, prefix := range e.keywords.SellerPrefixes {
		if prefix != "" && strings.HasPrefix(raw, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(raw, prefix)), true
		}
	}
	return raw, true
}

func (e *Extractor) brand(doc *goquery.Document) (string, bool) {
	var (
		brand string
		found bool
	)
	doc.Find(e.sel.SpecItem).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		label, ok := e.text(item, e.sel.SpecLabel)
		if !ok {
			return true
		}
		if _, hit := e.brands[label]; !hit {
			return true
		}
		brand, found = e.text(item, e.sel.SpecValue)
		return false
	})
	return brand, found
}

func (e *Extractor) reviews(doc *goquery.Document) []models.ReviewRecord {
	container := doc.Find(e.sel.ReviewContainer).First()
	if container.Length() == 0 {
		return []models.ReviewRecord{models.PlaceholderReview()}
	}

	nodes := container.Find(e.sel.Review)
	if nodes.Length() == 0 {
		return []models.ReviewRecord{models.PlaceholderReview()}
	}

	reviews := make([]models.ReviewRecord, 0, nodes.Length())
	nodes.Each(func(_ int, node *goquery.Selection) {
		reviews = append(reviews, e.review(node))
	})
	return reviews
}

func (e *Extractor) review(node *goquery.Selection) models.ReviewRecord {
	r := models.ReviewRecord{
		Username: models.Missing,
		Date:     models.Missing,
		Text:     models.Missing,
	}

	if v, ok := e.text(node, e.sel.ReviewUsername); ok {
		r.Username = v
	}
	if v, ok := e.text(node, e.sel.ReviewText); ok {
		r.Text = v
	}

	rating := node.Find(e.sel.ReviewStarOn).Length()
	r.Rating = &rating

	if sku := node.Find(e.sel.ReviewSKU).First(); sku.Length() > 0 {
		if v, ok := e.text(sku, e.sel.ReviewDate); ok {
			r.Date = v
		}
	}

	photos := node.Find(e.sel.ReviewPhotos).First()
	if photos.Length() == 0 {
		r.ImagesMissing = true
		return r
	}
	photos.Find(e.sel.ReviewImage).Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
			r.ImageURLs = append(r.ImageURLs, strings.TrimSpace(src))
		}
	})
	return r
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
