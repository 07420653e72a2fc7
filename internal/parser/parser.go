package parser

import (
	"github.com/maltedev/shop-scraper/internal/models"
)

// Parser turns one captured page into one product record.
type Parser interface {
	Extract(html string, sourceURL string) (*models.ProductRecord, error)
}
