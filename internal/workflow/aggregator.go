package workflow

import (
	"sync"
	"time"

	"github.com/maltedev/shop-scraper/internal/models"
	"github.com/maltedev/shop-scraper/internal/scraper"
)

type State string

const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateScraping    State = "scraping"
	StateExtracting  State = "extracting"
	StateDone        State = "done"
)

// URLStatus is one candidate's progress as shown by the status server.
type URLStatus struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Type     models.URLType `json:"type"`
	Region   string         `json:"region,omitempty"`
	Attempts int            `json:"attempts"`
	Outcome  models.Outcome `json:"outcome,omitempty"`
	Skipped  bool           `json:"skipped,omitempty"`
}

type Status struct {
	RunID               string      `json:"run_id"`
	Query               string      `json:"query"`
	State               State       `json:"state"`
	StartedAt           time.Time   `json:"started_at"`
	Current             string      `json:"current,omitempty"`
	TotalDiscovered     int         `json:"total_discovered"`
	Processed           int         `json:"processed"`
	SuccessfullyScraped int         `json:"successfully_scraped"`
	ProductsExtracted   int         `json:"products_extracted"`
	URLs                []URLStatus `json:"urls"`
}

// Aggregator collects results for one run. Lists are append-only; the status
// server reads them concurrently.
type Aggregator struct {
	mu         sync.RWMutex
	runID      string
	query      string
	state      State
	startedAt  time.Time
	current    string
	candidates []models.CandidateURL
	results    []*scraper.URLResult
	skipped    []models.CandidateURL
	products   []*models.ProductRecord
}

func NewAggregator() *Aggregator {
	return &Aggregator{state: StateIdle}
}

func (a *Aggregator) Start(runID, query string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.runID = runID
	a.query = query
	a.state = StateDiscovering
	a.startedAt = time.Now()
	a.current = ""
	a.candidates = nil
	a.results = nil
	a.skipped = nil
	a.products = nil
}

func (a *Aggregator) SetState(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
	if s != StateScraping {
		a.current = ""
	}
}

func (a *Aggregator) SetCandidates(c []models.CandidateURL) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.candidates = append([]models.CandidateURL(nil), c...)
}

func (a *Aggregator) SetCurrent(url string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = url
}

func (a *Aggregator) Record(r *scraper.URLResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results = append(a.results, r)
}

func (a *Aggregator) RecordSkipped(c models.CandidateURL) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipped = append(a.skipped, c)
}

func (a *Aggregator) AddProduct(p *models.ProductRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.products = append(a.products, p)
}

// Successes returns the successful attempt of each scraped URL, in order.
func (a *Aggregator) Successes() []*models.ScrapeAttempt {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []*models.ScrapeAttempt
	for _, r := range a.results {
		if r.Success != nil {
			out = append(out, r.Success)
		}
	}
	return out
}

func (a *Aggregator) Results() []*scraper.URLResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*scraper.URLResult(nil), a.results...)
}

func (a *Aggregator) Products() []*models.ProductRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*models.ProductRecord(nil), a.products...)
}

func (a *Aggregator) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Status{
		RunID:             a.runID,
		Query:             a.query,
		State:             a.state,
		StartedAt:         a.startedAt,
		Current:           a.current,
		TotalDiscovered:   len(a.candidates),
		Processed:         len(a.results) + len(a.skipped),
		ProductsExtracted: len(a.products),
		URLs:              make([]URLStatus, 0, len(a.results)+len(a.skipped)),
	}

	for _, r := range a.results {
		if r.Success != nil {
			s.SuccessfullyScraped++
		}
		u := URLStatus{
			URL:      r.Candidate.URL,
			Title:    r.Candidate.Title,
			Type:     r.Candidate.Type,
			Attempts: len(r.Attempts),
		}
		if last := r.Last(); last != nil {
			u.Region = last.Region
			u.Outcome = last.Outcome
		}
		s.URLs = append(s.URLs, u)
	}
	for _, c := range a.skipped {
		s.URLs = append(s.URLs, URLStatus{URL: c.URL, Title: c.Title, Type: c.Type, Skipped: true})
	}
	return s
}
