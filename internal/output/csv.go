package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maltedev/shop-scraper/internal/models"
)

const timestampLayout = "20060102_150405"

// utf8BOM lets spreadsheet tools detect UTF-8 for non-Latin fields.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CSVWriter struct {
	dir string
	now func() time.Time
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir, now: time.Now}
}

// Filename is the path the next Write would produce.
func (w *CSVWriter) Filename() string {
	return filepath.Join(w.dir, fmt.Sprintf("products_reviews_%s.csv", w.now().Format(timestampLayout)))
}

// Write stores one row per (product, review) and returns the file path.
func (w *CSVWriter) Write(products []*models.ProductRecord) (string, error) {
	filename := w.Filename()
	if err := ensureDir(filename); err != nil {
		return "", err
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("write csv bom: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(models.Columns); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	for _, p := range products {
		if p == nil {
			continue
		}
		if err := writer.WriteAll(p.Rows()); err != nil {
			return "", fmt.Errorf("write csv rows for %s: %w", p.SourceURL, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close csv file: %w", err)
	}
	return filename, nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
