package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maltedev/shop-scraper/internal/models"
)

var reviewColumns = []string{
	"product_id", "position", "username", "review_date", "rating",
	"review_text", "image_urls", "images_missing", "placeholder",
}

// SaveRun stores the run summary with every extracted product and review in
// one transaction.
func (db *DB) SaveRun(ctx context.Context, summary *models.WorkflowSummary, products []*models.ProductRecord) error {
	runID, err := uuid.Parse(summary.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", summary.RunID, err)
	}

	return db.Transaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO scrape_runs (id, query, total_discovered, successfully_scraped, products_extracted, csv_path, aborted, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				total_discovered = EXCLUDED.total_discovered,
				successfully_scraped = EXCLUDED.successfully_scraped,
				products_extracted = EXCLUDED.products_extracted,
				csv_path = EXCLUDED.csv_path,
				aborted = EXCLUDED.aborted,
				completed_at = EXCLUDED.completed_at`,
			runID, summary.Query, summary.TotalDiscovered, summary.SuccessfullyScraped,
			summary.ProductsExtracted, nullable(summary.CSVPath), summary.Aborted, summary.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for _, p := range products {
			if p == nil {
				continue
			}
			productID := uuid.New()

			_, err := tx.Exec(ctx, `
				INSERT INTO shop_products (id, run_id, source_url, name, price, seller, brand, overall_rating, total_ratings, sold_count, extracted_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				productID, runID, p.SourceURL,
				nullable(p.Name), nullable(p.Price), nullable(p.Seller), nullable(p.Brand),
				nullable(p.OverallRating), nullable(p.TotalRatings), nullable(p.SoldCount),
				p.ExtractedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert product %s: %w", p.SourceURL, err)
			}

			rows := reviewRows(productID, p.Reviews)
			if _, err := tx.CopyFrom(ctx, pgx.Identifier{"product_reviews"}, reviewColumns, pgx.CopyFromRows(rows)); err != nil {
				return fmt.Errorf("failed to copy reviews for %s: %w", p.SourceURL, err)
			}
		}

		return nil
	})
}

// CountProducts returns how many products were stored for a run.
func (db *DB) CountProducts(ctx context.Context, runID string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM shop_products WHERE run_id = $1`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// reviewRows converts reviews into COPY rows. A product without reviews gets
// the placeholder row so the table mirrors the CSV.
func reviewRows(productID uuid.UUID, reviews []models.ReviewRecord) [][]any {
	if len(reviews) == 0 {
		reviews = []models.ReviewRecord{models.PlaceholderReview()}
	}

	rows := make([][]any, 0, len(reviews))
	for i, r := range reviews {
		var rating *int32
		if r.Rating != nil {
			v := int32(*r.Rating)
			rating = &v
		}

		var images []string
		if !r.ImagesMissing {
			images = append([]string{}, r.ImageURLs...)
		}

		rows = append(rows, []any{
			productID,
			int32(i),
			nullable(r.Username),
			nullable(r.Date),
			rating,
			nullable(r.Text),
			images,
			r.ImagesMissing,
			r.IsPlaceholder(),
		})
	}
	return rows
}

// nullable stores the missing sentinel and empty strings as NULL.
func nullable(s string) *string {
	if s == "" || s == models.Missing {
		return nil
	}
	return &s
}
