package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shop-scraper/internal/cache"
	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/scraper"
)

const persistTimeout = 30 * time.Second

type Discoverer interface {
	Discover(ctx context.Context, query string, limit int, country string) []models.CandidateURL
}

type URLScraper interface {
	ScrapeURL(ctx context.Context, candidate models.CandidateURL) *scraper.URLResult
}

type Extractor interface {
	Extract(html string, sourceURL string) (*models.ProductRecord, error)
}

type CSVSink interface {
	Write(products []*models.ProductRecord) (string, error)
}

type RunStore interface {
	SaveRun(ctx context.Context, summary *models.WorkflowSummary, products []*models.ProductRecord) error
}

type RecentCache interface {
	WasRecentlyScraped(ctx context.Context, url string) (bool, error)
	MarkScraped(ctx context.Context, url string) error
	Publish(ctx context.Context, event cache.URLEvent) error
}

type Ledger interface {
	AddBatch(candidates []models.CandidateURL) error
	Record(url string, attempts int, last *models.ScrapeAttempt) error
}

type Recorder interface {
	IncURL(result string)
	AddCandidates(n int)
	IncProducts()
	IncExtractErrors()
}

// Deps wires the workflow. Discoverer, Scraper, Extractor and CSV are
// required; the rest are optional.
type Deps struct {
	Discoverer Discoverer
	Scraper    URLScraper
	Extractor  Extractor
	CSV        CSVSink

	Store   RunStore
	Cache   RecentCache
	Ledger  Ledger
	Metrics Recorder
	// NewLedger opens a ledger once the run id is known. Ignored when
	// Ledger is set.
	NewLedger func(runID string) (Ledger, error)
}

type Options struct {
	Limit   int
	Country string
	// SkipRecent skips URLs the cache saw succeed within its TTL.
	SkipRecent bool
}

type Result struct {
	Summary    models.WorkflowSummary  `json:"summary"`
	Candidates []models.CandidateURL   `json:"candidates"`
	URLResults []*scraper.URLResult    `json:"url_results"`
	Products   []*models.ProductRecord `json:"products"`
	Successes  []*models.ScrapeAttempt `json:"-"`
}

type Workflow struct {
	deps   Deps
	opts   Options
	agg    *Aggregator
	logger *slog.Logger
	now    func() time.Time
}

func New(deps Deps, opts Options, agg *Aggregator) *Workflow {
	if agg == nil {
		agg = NewAggregator()
	}
	return &Workflow{
		deps:   deps,
		opts:   opts,
		agg:    agg,
		logger: slog.Default().With("component", "workflow"),
		now:    time.Now,
	}
}

func (w *Workflow) Aggregator() *Aggregator {
	return w.agg
}

// Run executes discover, scrape, extract and persist. Collected results
// survive an operator quit or a cancelled ctx: extraction and the CSV still
// run. The returned error reports a CSV failure; the result is always set.
func (w *Workflow) Run(ctx context.Context, query string) (*Result, error) {
	runID := uuid.NewString()
	logger := w.logger.With("run_id", runID)
	w.agg.Start(runID, query)

	logger.Info("starting scrape workflow", "query", query, "limit", w.opts.Limit, "country", w.opts.Country)

	candidates := w.deps.Discoverer.Discover(ctx, query, w.opts.Limit, w.opts.Country)
	w.agg.SetCandidates(candidates)
	w.metrics().AddCandidates(len(candidates))

	ledger := w.openLedger(runID, logger)
	if ledger != nil {
		if err := ledger.AddBatch(candidates); err != nil {
			logger.Warn("failed to record candidates in ledger", "error", err)
		}
	}

	aborted := w.scrapeAll(ctx, runID, candidates, ledger, logger)

	w.agg.SetState(StateExtracting)
	successes := w.agg.Successes()
	for _, attempt := range successes {
		product, err := w.extract(attempt)
		if err != nil {
			w.metrics().IncExtractErrors()
			logger.Error("failed to extract product data", "url", attempt.URL, "error", err)
			continue
		}
		w.agg.AddProduct(product)
		w.metrics().IncProducts()
	}
	products := w.agg.Products()
	logger.Info("extraction completed", "snapshots", len(successes), "products", len(products))

	result := &Result{
		Summary: models.WorkflowSummary{
			RunID:               runID,
			Query:               query,
			TotalDiscovered:     len(candidates),
			SuccessfullyScraped: len(successes),
			ProductsExtracted:   len(products),
			Aborted:             aborted,
		},
		Candidates: candidates,
		URLResults: w.agg.Results(),
		Products:   products,
		Successes:  successes,
	}

	var csvErr error
	if len(products) > 0 {
		path, err := w.deps.CSV.Write(products)
		if err != nil {
			csvErr = fmt.Errorf("failed to write csv: %w", err)
			logger.Error("failed to write csv", "error", err)
		} else {
			result.Summary.CSVGenerated = true
			result.Summary.CSVPath = path
			logger.Info("csv written", "path", path, "products", len(products))
		}
	} else {
		logger.Info("no product data to save")
	}

	result.Summary.CompletedAt = w.now()

	if w.deps.Store != nil {
		persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		if err := w.deps.Store.SaveRun(persistCtx, &result.Summary, products); err != nil {
			logger.Error("failed to store run", "error", err)
		}
		cancel()
	}

	w.agg.SetState(StateDone)
	logger.Info("workflow completed",
		"discovered", result.Summary.TotalDiscovered,
		"scraped", result.Summary.SuccessfullyScraped,
		"products", result.Summary.ProductsExtracted,
		"aborted", aborted,
	)
	return result, csvErr
}

// scrapeAll processes candidates in order. It reports whether the batch was
// cut short by an operator quit or cancellation.
func (w *Workflow) scrapeAll(ctx context.Context, runID string, candidates []models.CandidateURL, ledger Ledger, logger *slog.Logger) bool {
	w.agg.SetState(StateScraping)

	for i, c := range candidates {
		if ctx.Err() != nil {
			logger.Info("run interrupted", "processed", i, "total", len(candidates))
			return true
		}

		logger.Info("scraping url",
			"index", i+1,
			"total", len(candidates),
			"url", c.URL,
			"title", c.Title,
			"type", c.Type,
		)

		if w.opts.SkipRecent && w.deps.Cache != nil {
			recent, err := w.deps.Cache.WasRecentlyScraped(ctx, c.URL)
			if err != nil {
				logger.Warn("failed to check recent cache", "url", c.URL, "error", err)
			}
			if recent {
				logger.Info("skipping recently scraped url", "url", c.URL)
				w.agg.RecordSkipped(c)
				w.metrics().IncURL("skipped_recent")
				continue
			}
		}

		w.agg.SetCurrent(c.URL)
		res := w.deps.Scraper.ScrapeURL(ctx, c)
		w.agg.Record(res)
		w.afterURL(ctx, runID, res, ledger, logger)

		if res.Quit {
			logger.Info("operator quit, stopping batch", "processed", i+1, "total", len(candidates))
			return true
		}
	}

	if ctx.Err() != nil {
		return true
	}
	return false
}

func (w *Workflow) afterURL(ctx context.Context, runID string, res *scraper.URLResult, ledger Ledger, logger *slog.Logger) {
	last := res.Last()

	switch {
	case res.Success != nil:
		w.metrics().IncURL("scraped")
	case res.Quit:
		w.metrics().IncURL("quit")
	default:
		w.metrics().IncURL("failed")
		logger.Warn("all attempts failed", "url", res.Candidate.URL, "attempts", len(res.Attempts))
	}

	if ledger != nil {
		if err := ledger.Record(res.Candidate.URL, len(res.Attempts), last); err != nil {
			logger.Warn("failed to update ledger", "url", res.Candidate.URL, "error", err)
		}
	}

	if w.deps.Cache == nil || last == nil || ctx.Err() != nil {
		return
	}
	if res.Success != nil {
		if err := w.deps.Cache.MarkScraped(ctx, res.Candidate.URL); err != nil {
			logger.Warn("failed to mark url scraped", "url", res.Candidate.URL, "error", err)
		}
	}
	event := cache.URLEvent{
		RunID:     runID,
		URL:       res.Candidate.URL,
		Region:    last.Region,
		Attempts:  len(res.Attempts),
		Outcome:   last.Outcome,
		Timestamp: w.now(),
	}
	if err := w.deps.Cache.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish url event", "url", res.Candidate.URL, "error", err)
	}
}

// extract contains parser panics to the one snapshot.
func (w *Workflow) extract(attempt *models.ScrapeAttempt) (product *models.ProductRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			product = nil
			err = fmt.Errorf("panic during extraction: %v", r)
		}
	}()
	return w.deps.Extractor.Extract(attempt.HTML, attempt.URL)
}

func (w *Workflow) openLedger(runID string, logger *slog.Logger) Ledger {
	if w.deps.Ledger != nil {
		return w.deps.Ledger
	}
	if w.deps.NewLedger == nil {
		return nil
	}
	l, err := w.deps.NewLedger(runID)
	if err != nil {
		logger.Warn("failed to open run ledger", "error", err)
		return nil
	}
	return l
}

type noopRecorder struct{}

func (noopRecorder) IncURL(string)     {}
func (noopRecorder) AddCandidates(int) {}
func (noopRecorder) IncProducts()      {}
func (noopRecorder) IncExtractErrors() {}

func (w *Workflow) metrics() Recorder {
	if w.deps.Metrics == nil {
		return noopRecorder{}
	}
	return w.deps.Metrics
}
