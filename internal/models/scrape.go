package models

import (
	"time"
)

type URLType string

const (
	URLTypeMainShop       URLType = "main_shop"
	URLTypeSellerPortal   URLType = "seller_portal"
	URLTypeBusinessPortal URLType = "business_portal"
	URLTypeShopProduct    URLType = "shop_product"
	URLTypeShopGeneral    URLType = "shop_general"
	URLTypeShopRelated    URLType = "shop_related"
	URLTypeUnknown        URLType = "unknown"
)

// CandidateURL is one discovered page, consumed once by the orchestrator.
type CandidateURL struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Type        URLType `json:"type"`
	Query       string  `json:"query"`
}

// Outcome is the terminal state of one scrape attempt.
type Outcome string

const (
	OutcomeSuccess                Outcome = "success"
	OutcomeHTTPError              Outcome = "http_error"
	OutcomeRegionBlocked          Outcome = "region_blocked"
	OutcomeChallengeHeadlessAbort Outcome = "challenge_headless_abort"
	OutcomeUserSkipped            Outcome = "user_skipped"
	OutcomeUserQuit               Outcome = "user_quit"
	OutcomeException              Outcome = "exception"
)

type ScrapeAttempt struct {
	URL          string    `json:"url"`
	FinalURL     string    `json:"final_url"`
	Region       string    `json:"region"`
	Attempt      int       `json:"attempt"`
	Outcome      Outcome   `json:"outcome"`
	Error        string    `json:"error,omitempty"`
	HTML         string    `json:"-"`
	SnapshotPath string    `json:"snapshot_path,omitempty"`
	CapturedAt   time.Time `json:"captured_at"`
}

func (a *ScrapeAttempt) Succeeded() bool {
	return a != nil && a.Outcome == OutcomeSuccess
}

type WorkflowSummary struct {
	RunID               string    `json:"run_id"`
	Query               string    `json:"query"`
	TotalDiscovered     int       `json:"total_discovered"`
	SuccessfullyScraped int       `json:"successfully_scraped"`
	ProductsExtracted   int       `json:"products_extracted"`
	CSVGenerated        bool      `json:"csv_generated"`
	CSVPath             string    `json:"csv_path,omitempty"`
	Aborted             bool      `json:"aborted"`
	CompletedAt         time.Time `json:"completed_at"`
}
