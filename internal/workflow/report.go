package workflow

import (
	"fmt"
	"io"
	"strings"
)

const reportSampleSize = 5

// WriteSummary prints the end-of-run report for the operator.
func WriteSummary(w io.Writer, result *Result) error {
	s := result.Summary
	var b strings.Builder

	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	b.WriteString("SCRAPE SUMMARY\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Query:                %s\n", s.Query)
	fmt.Fprintf(&b, "Run ID:               %s\n", s.RunID)
	fmt.Fprintf(&b, "URLs discovered:      %d\n", s.TotalDiscovered)
	fmt.Fprintf(&b, "Successfully scraped: %d\n", s.SuccessfullyScraped)
	fmt.Fprintf(&b, "Products extracted:   %d\n", s.ProductsExtracted)
	if s.CSVGenerated {
		fmt.Fprintf(&b, "CSV file:             %s\n", s.CSVPath)
	} else {
		b.WriteString("CSV file:             not generated\n")
	}
	if s.Aborted {
		b.WriteString("Run stopped early.\n")
	}

	if len(result.Successes) > 0 {
		b.WriteString("\nSuccessfully scraped URLs:\n")
		for i, a := range result.Successes {
			if i == reportSampleSize {
				fmt.Fprintf(&b, "  ... and %d more\n", len(result.Successes)-reportSampleSize)
				break
			}
			fmt.Fprintf(&b, "  %d. %s (region: %s)\n", i+1, a.URL, a.Region)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
