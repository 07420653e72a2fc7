package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maltedev/shop-scraper/internal/models"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusScraped Status = "scraped"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusQuit    Status = "quit"
)

// Entry is the ledger's view of one candidate URL.
type Entry struct {
	RunID        string         `json:"run_id"`
	URL          string         `json:"url"`
	Title        string         `json:"title"`
	Type         models.URLType `json:"type"`
	Status       Status         `json:"status"`
	Region       string         `json:"region,omitempty"`
	Attempts     int            `json:"attempts"`
	Outcome      models.Outcome `json:"outcome,omitempty"`
	SnapshotPath string         `json:"snapshot_path,omitempty"`
	AddedAt      time.Time      `json:"added_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Error        string         `json:"error,omitempty"`
}

// Ledger persists per-URL progress to a JSON file after every change so an
// interrupted run leaves an accurate record.
type Ledger struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	filename string
	runID    string
}

func NewLedger(filename, runID string) (*Ledger, error) {
	l := &Ledger{
		entries:  make(map[string]*Entry),
		filename: filename,
		runID:    runID,
	}

	if err := l.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return l, nil
}

// AddBatch registers candidates as pending. Known URLs are reset for this run.
func (l *Ledger) AddBatch(candidates []models.CandidateURL) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for _, c := range candidates {
		if c.URL == "" {
			continue
		}
		l.entries[c.URL] = &Entry{
			RunID:     l.runID,
			URL:       c.URL,
			Title:     c.Title,
			Type:      c.Type,
			Status:    StatusPending,
			AddedAt:   now,
			UpdatedAt: now,
		}
	}

	return l.save()
}

// Record stores the last attempt made for url.
func (l *Ledger) Record(url string, attempts int, last *models.ScrapeAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[url]
	if !exists {
		return fmt.Errorf("ledger entry not found: %s", url)
	}

	entry.Attempts = attempts
	entry.UpdatedAt = time.Now()
	entry.Status = StatusFailed
	entry.Error = ""
	if last != nil {
		entry.Region = last.Region
		entry.Outcome = last.Outcome
		entry.SnapshotPath = last.SnapshotPath
		entry.Error = last.Error
		entry.Status = statusFor(last.Outcome)
	}

	return l.save()
}

func statusFor(o models.Outcome) Status {
	switch o {
	case models.OutcomeSuccess:
		return StatusScraped
	case models.OutcomeUserSkipped:
		return StatusSkipped
	case models.OutcomeUserQuit:
		return StatusQuit
	default:
		return StatusFailed
	}
}

func (l *Ledger) Get(url string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, exists := l.entries[url]
	if !exists {
		return Entry{}, false
	}
	return *entry, true
}

func (l *Ledger) GetPending() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var pending []Entry
	for _, entry := range l.entries {
		if entry.Status == StatusPending {
			pending = append(pending, *entry)
		}
	}
	return pending
}

func (l *Ledger) GetStats() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := make(map[string]int)
	for _, entry := range l.entries {
		stats[string(entry.Status)]++
	}
	stats["total"] = len(l.entries)
	return stats
}

func (l *Ledger) save() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(l.filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}

	// Write to temp file first for atomicity
	tmpFile := l.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpFile, l.filename)
}

func (l *Ledger) Load() error {
	data, err := os.ReadFile(l.filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &l.entries)
}
